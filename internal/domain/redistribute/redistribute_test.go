package redistribute_test

import (
	"context"
	"testing"

	"github.com/fairwaylabs/fairway/internal/adapters/repository"
	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/redistribute"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
	"github.com/fairwaylabs/fairway/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func records(t tier.Name, scores ...float64) []model.RankingRecord {
	out := make([]model.RankingRecord, len(scores))
	for i, s := range scores {
		out[i] = model.RankingRecord{
			UserID:   "user-1",
			CourseID: string(rune('a' + i)),
			Tier:     t,
			Position: i + 1,
			Score:    s,
		}
	}
	return out
}

func scoresOf(recs []model.RankingRecord) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.Score
	}
	return out
}

func TestScores(t *testing.T) {
	_ = logger.Init()

	Convey("Given a redistribution engine", t, func() {
		engine := redistribute.New(repository.NewMemStore())
		liked, _ := tier.Of(tier.Liked)

		Convey("When redistributing three liked courses", func() {
			out, err := engine.Scores(liked, records(tier.Liked, 9.1, 8.0, 7.7))

			Convey("Then the step spans the band evenly", func() {
				So(err, ShouldBeNil)
				So(scoresOf(out), ShouldResemble, []float64{10.0, 8.5, 7.0})
			})
		})

		Convey("When redistributing four liked courses", func() {
			out, err := engine.Scores(liked, records(tier.Liked, 10.0, 8.5, 7.0, 9.7))

			Convey("Then the step shrinks to fit", func() {
				So(err, ShouldBeNil)
				So(scoresOf(out), ShouldResemble, []float64{10.0, 9.0, 8.0, 7.0})
			})
		})

		Convey("When redistributing a single record", func() {
			out, err := engine.Scores(liked, records(tier.Liked, 8.2))

			Convey("Then it receives the tier maximum", func() {
				So(err, ShouldBeNil)
				So(out[0].Score, ShouldEqual, 10.0)
			})
		})

		Convey("When redistributing an empty list", func() {
			out, err := engine.Scores(liked, nil)

			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
		})

		Convey("When the input arrives out of position order", func() {
			recs := records(tier.Liked, 9.1, 8.0, 7.7)
			recs[0].Position = 3
			recs[2].Position = 1
			out, err := engine.Scores(liked, recs)

			Convey("Then records are ordered by position before scoring", func() {
				So(err, ShouldBeNil)
				So(out[0].CourseID, ShouldEqual, "c")
				So(scoresOf(out), ShouldResemble, []float64{10.0, 8.5, 7.0})
			})
		})

		Convey("When redistributing twice in a row", func() {
			first, err := engine.Scores(liked, records(tier.Liked, 9.9, 9.8, 9.7, 9.6, 9.5))
			So(err, ShouldBeNil)
			second, err := engine.Scores(liked, first)

			Convey("Then the scores are identical both times", func() {
				So(err, ShouldBeNil)
				So(scoresOf(second), ShouldResemble, scoresOf(first))
			})
		})

		Convey("When the band cannot fit the requested spacing", func() {
			fine, _ := tier.Of(tier.Fine)
			wide := redistribute.New(repository.NewMemStore(), redistribute.WithMinGap(0.3))
			recs := make([]model.RankingRecord, 12)
			for i := range recs {
				recs[i] = model.RankingRecord{
					UserID:   "user-1",
					CourseID: string(rune('a' + i)),
					Tier:     tier.Fine,
					Position: i + 1,
					Score:    fine.ScoreMax,
				}
			}
			out, err := wide.Scores(fine, recs)

			Convey("Then the tail divides the remaining range instead of sinking below the band", func() {
				So(err, ShouldBeNil)
				scores := scoresOf(out)
				So(scores[0], ShouldEqual, 6.9)
				So(scores[9], ShouldEqual, 4.2)
				So(scores[10], ShouldEqual, 4.1)
				So(scores[11], ShouldEqual, 4.0)
				for _, s := range scores {
					So(fine.Contains(s), ShouldBeTrue)
				}
				for i := 1; i < len(scores); i++ {
					So(scores[i], ShouldBeLessThanOrEqualTo, scores[i-1])
				}
			})
		})
	})
}

func TestRedistribute(t *testing.T) {
	_ = logger.Init()

	Convey("Given a redistribution engine over an in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		engine := redistribute.New(store)
		liked, _ := tier.Of(tier.Liked)

		seeded := records(tier.Liked, 9.1, 8.0, 7.7)
		for _, r := range seeded {
			_, err := store.Insert(ctx, r)
			So(err, ShouldBeNil)
		}

		Convey("When redistributing the persisted list", func() {
			current, err := store.Select(ctx, "user-1", tier.Liked)
			So(err, ShouldBeNil)

			out, err := engine.Redistribute(ctx, "user-1", liked, current)

			Convey("Then the recomputed scores are persisted", func() {
				So(err, ShouldBeNil)
				So(scoresOf(out), ShouldResemble, []float64{10.0, 8.5, 7.0})

				persisted, err := store.Select(ctx, "user-1", tier.Liked)
				So(err, ShouldBeNil)
				So(scoresOf(persisted), ShouldResemble, []float64{10.0, 8.5, 7.0})
			})
		})

		Convey("When redistributing an empty list", func() {
			out, err := engine.Redistribute(ctx, "user-2", liked, nil)

			Convey("Then nothing is written", func() {
				So(err, ShouldBeNil)
				So(out, ShouldBeEmpty)
			})
		})
	})
}
