package config_test

import (
	"testing"

	"github.com/fairwaylabs/fairway/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 30)
			convey.So(cfg.VerifiedCacheTTLSeconds, convey.ShouldEqual, 300)
			convey.So(cfg.RepairThreshold, convey.ShouldEqual, 3)
			convey.So(cfg.MinScoreGap, convey.ShouldEqual, 0.1)
			convey.So(cfg.MaxRankingLimit, convey.ShouldEqual, 500)
		})
	})
}
