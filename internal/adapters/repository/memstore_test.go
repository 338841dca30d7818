package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/fairwaylabs/fairway/internal/adapters/repository"
	"github.com/fairwaylabs/fairway/internal/domain/model"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func record(userID, courseID string, position int, score float64) model.RankingRecord {
	return model.RankingRecord{
		UserID:   userID,
		CourseID: courseID,
		Tier:     tier.Liked,
		Position: position,
		Score:    score,
	}
}

func TestInsert(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		fixed := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
		store := repository.NewMemStore(repository.WithClock(func() time.Time { return fixed }))

		Convey("When inserting a valid record", func() {
			inserted, err := store.Insert(ctx, record("user-1", "pebble", 1, 10.0))

			Convey("Then it gets an ID and timestamps", func() {
				So(err, ShouldBeNil)
				So(inserted.ID, ShouldNotBeEmpty)
				So(inserted.CreatedAt, ShouldEqual, fixed)
				So(inserted.UpdatedAt, ShouldEqual, fixed)
			})

			Convey("And inserting the same course in the same tier again fails", func() {
				So(err, ShouldBeNil)
				_, err := store.Insert(ctx, record("user-1", "pebble", 2, 9.0))
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "already exists")
			})

			Convey("But the same course in another tier is a separate record", func() {
				So(err, ShouldBeNil)
				other := record("user-1", "pebble", 1, 6.9)
				other.Tier = tier.Fine
				_, err := store.Insert(ctx, other)
				So(err, ShouldBeNil)
				So(store.Count(), ShouldEqual, 2)
			})
		})

		Convey("When inserting an invalid record", func() {
			Convey("A missing course id is rejected", func() {
				_, err := store.Insert(ctx, record("user-1", "", 1, 10.0))
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "invalid ranking record")
			})
			Convey("An unknown tier is rejected", func() {
				bad := record("user-1", "pebble", 1, 10.0)
				bad.Tier = "loved"
				_, err := store.Insert(ctx, bad)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown tier")
			})
			Convey("A non-positive position is rejected", func() {
				_, err := store.Insert(ctx, record("user-1", "pebble", 0, 10.0))
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "position 0")
			})
		})
	})
}

func TestSelect(t *testing.T) {
	Convey("Given records for two users across tiers", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		for _, r := range []model.RankingRecord{
			record("user-1", "c", 3, 7.0),
			record("user-1", "a", 1, 10.0),
			record("user-1", "b", 2, 8.5),
			record("user-2", "a", 1, 10.0),
		} {
			_, err := store.Insert(ctx, r)
			So(err, ShouldBeNil)
		}
		fine := record("user-1", "d", 1, 6.9)
		fine.Tier = tier.Fine
		_, err := store.Insert(ctx, fine)
		So(err, ShouldBeNil)

		Convey("When selecting one user's liked list", func() {
			out, err := store.Select(ctx, "user-1", tier.Liked)

			Convey("Then only that key's records come back, ordered by position", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 3)
				So(out[0].CourseID, ShouldEqual, "a")
				So(out[1].CourseID, ShouldEqual, "b")
				So(out[2].CourseID, ShouldEqual, "c")
			})
		})

		Convey("When selecting a key with no records", func() {
			out, err := store.Select(ctx, "user-3", tier.Liked)

			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
		})
	})
}

func TestBulkUpsert(t *testing.T) {
	Convey("Given a store with an existing list", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		a, err := store.Insert(ctx, record("user-1", "a", 1, 10.0))
		So(err, ShouldBeNil)
		b, err := store.Insert(ctx, record("user-1", "b", 2, 8.5))
		So(err, ShouldBeNil)

		Convey("When upserting updated copies alongside a new record", func() {
			a.Score = 10.0
			b.Score = 9.0
			b.Position = 2
			fresh := record("user-1", "c", 3, 8.0)

			err := store.BulkUpsert(ctx, []model.RankingRecord{a, b, fresh})

			Convey("Then existing IDs are preserved and the new record gets one", func() {
				So(err, ShouldBeNil)
				out, err := store.Select(ctx, "user-1", tier.Liked)
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 3)
				So(out[0].ID, ShouldEqual, a.ID)
				So(out[1].ID, ShouldEqual, b.ID)
				So(out[1].Score, ShouldEqual, 9.0)
				So(out[2].ID, ShouldNotBeEmpty)
				So(out[2].CourseID, ShouldEqual, "c")
			})
		})

		Convey("When upserting a record with no ID but a matching natural key", func() {
			update := record("user-1", "b", 2, 7.5)

			err := store.BulkUpsert(ctx, []model.RankingRecord{update})

			Convey("Then the stored row is updated in place", func() {
				So(err, ShouldBeNil)
				So(store.Count(), ShouldEqual, 2)
				out, err := store.Select(ctx, "user-1", tier.Liked)
				So(err, ShouldBeNil)
				So(out[1].ID, ShouldEqual, b.ID)
				So(out[1].Score, ShouldEqual, 7.5)
			})
		})

		Convey("When any record in the batch is invalid", func() {
			bad := record("user-1", "", 3, 8.0)

			err := store.BulkUpsert(ctx, []model.RankingRecord{a, bad})

			Convey("Then nothing is written", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "invalid ranking record")
				So(store.Count(), ShouldEqual, 2)
			})
		})
	})
}

func TestSwapPositions(t *testing.T) {
	Convey("Given a five-course list", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		ids := make(map[string]string)
		for i, courseID := range []string{"a", "b", "c", "d", "e"} {
			inserted, err := store.Insert(ctx, record("user-1", courseID, i+1, 10.0-float64(i)))
			So(err, ShouldBeNil)
			ids[courseID] = inserted.ID
		}

		order := func() []string {
			out, err := store.Select(ctx, "user-1", tier.Liked)
			So(err, ShouldBeNil)
			courses := make([]string, len(out))
			for i, r := range out {
				So(r.Position, ShouldEqual, i+1)
				courses[i] = r.CourseID
			}
			return courses
		}

		Convey("When moving a lower course up", func() {
			So(store.SwapPositions(ctx, ids["d"], ids["b"]), ShouldBeNil)

			Convey("Then d takes b's slot and b, c shift down", func() {
				So(order(), ShouldResemble, []string{"a", "d", "b", "c", "e"})
			})
		})

		Convey("When moving an upper course down", func() {
			So(store.SwapPositions(ctx, ids["b"], ids["d"]), ShouldBeNil)

			Convey("Then b takes d's slot and c, d shift up", func() {
				So(order(), ShouldResemble, []string{"a", "c", "d", "b", "e"})
			})
		})

		Convey("When the records already share a position", func() {
			So(store.SwapPositions(ctx, ids["c"], ids["c"]), ShouldBeNil)
			So(order(), ShouldResemble, []string{"a", "b", "c", "d", "e"})
		})

		Convey("When a record id is unknown", func() {
			err := store.SwapPositions(ctx, ids["a"], "no-such-id")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "not found")
		})

		Convey("When the records belong to different lists", func() {
			other := record("user-1", "z", 1, 6.9)
			other.Tier = tier.Fine
			inserted, err := store.Insert(ctx, other)
			So(err, ShouldBeNil)

			So(store.SwapPositions(ctx, ids["a"], inserted.ID), ShouldEqual, repository.ErrSwapMismatch)
		})
	})
}

func TestIncrementComparisonCounts(t *testing.T) {
	Convey("Given a ranked list", t, func() {
		ctx := context.Background()
		fixed := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
		store := repository.NewMemStore(repository.WithClock(func() time.Time { return fixed }))

		for i, courseID := range []string{"a", "b", "c"} {
			_, err := store.Insert(ctx, record("user-1", courseID, i+1, 10.0-float64(i)))
			So(err, ShouldBeNil)
		}

		Convey("When incrementing two of the courses", func() {
			err := store.IncrementComparisonCounts(ctx, "user-1", []string{"a", "c"})

			Convey("Then only those counters and timestamps move", func() {
				So(err, ShouldBeNil)
				out, serr := store.Select(ctx, "user-1", tier.Liked)
				So(serr, ShouldBeNil)
				So(out[0].ComparisonCount, ShouldEqual, 1)
				So(out[0].LastComparedAt, ShouldNotBeNil)
				So(*out[0].LastComparedAt, ShouldEqual, fixed)
				So(out[1].ComparisonCount, ShouldEqual, 0)
				So(out[1].LastComparedAt, ShouldBeNil)
				So(out[2].ComparisonCount, ShouldEqual, 1)
			})
		})

		Convey("When the course list names an unranked course", func() {
			err := store.IncrementComparisonCounts(ctx, "user-1", []string{"nowhere"})

			Convey("Then the call is a no-op", func() {
				So(err, ShouldBeNil)
				out, serr := store.Select(ctx, "user-1", tier.Liked)
				So(serr, ShouldBeNil)
				for _, r := range out {
					So(r.ComparisonCount, ShouldEqual, 0)
				}
			})
		})
	})
}
