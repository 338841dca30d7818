// Command seed drives the ranking engine in-process with randomized
// reviews and comparisons, then prints the resulting tier rankings. It is
// a manual exercise tool, not part of the service.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/fairwaylabs/fairway/internal/adapters/repository"
	"github.com/fairwaylabs/fairway/internal/adapters/reviews"
	engine "github.com/fairwaylabs/fairway/internal/app"
	"github.com/fairwaylabs/fairway/internal/domain/tier"
	"github.com/fairwaylabs/fairway/pkg/logger"
)

func main() {
	users := flag.Int("users", 3, "number of users to simulate")
	courses := flag.Int("courses", 12, "number of courses per user")
	comparisons := flag.Int("comparisons", 20, "number of random comparisons per user")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	_ = logger.SetLevelString("warn")

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // deterministic seed for reproducible runs

	store := repository.NewMemStore()
	reviewSource := reviews.NewMemReviews()
	eng := engine.New(store, engine.WithReviews(reviewSource))

	tiers := tier.All()
	for u := 0; u < *users; u++ {
		userID := fmt.Sprintf("user-%d", u+1)

		// Review courses, spreading them over the three tiers. A few are
		// recorded as reviews only, so reconciliation has work to do.
		perTier := make(map[tier.Name][]string)
		for c := 0; c < *courses; c++ {
			courseID := fmt.Sprintf("course-%02d", c+1)
			t := tiers[rng.Intn(len(tiers))]
			reviewSource.Add(userID, t.Name, courseID)
			if rng.Float64() < 0.2 {
				continue // review without a ranking record
			}
			if _, err := eng.AddCourse(ctx, userID, courseID, t.Name, engine.AddRequest{}); err != nil {
				fmt.Fprintf(os.Stderr, "add %s for %s: %v\n", courseID, userID, err)
				return
			}
			perTier[t.Name] = append(perTier[t.Name], courseID)
		}

		for i := 0; i < *comparisons; i++ {
			t := tiers[rng.Intn(len(tiers))]
			ids := perTier[t.Name]
			if len(ids) < 2 {
				continue
			}
			a, b := rng.Intn(len(ids)), rng.Intn(len(ids))
			if a == b {
				continue
			}
			if _, err := eng.ResolveComparison(ctx, userID, ids[a], ids[b], t.Name); err != nil {
				fmt.Fprintf(os.Stderr, "comparison for %s: %v\n", userID, err)
				return
			}
		}

		for _, t := range tiers {
			if _, err := eng.ReconcileMissing(ctx, userID, t.Name); err != nil {
				fmt.Fprintf(os.Stderr, "reconcile %s/%s: %v\n", userID, t.Name, err)
				return
			}
		}
	}

	// Print every user's rankings per tier.
	for u := 0; u < *users; u++ {
		userID := fmt.Sprintf("user-%d", u+1)
		fmt.Printf("\n== %s ==\n", userID)
		for _, t := range tiers {
			records, err := eng.Rankings(ctx, userID, t.Name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "rankings %s/%s: %v\n", userID, t.Name, err)
				return
			}
			if len(records) == 0 {
				continue
			}
			fmt.Printf("  %s:\n", t.Name)
			for _, r := range records {
				fmt.Printf("    %2d. %-12s %.1f (compared %d times)\n",
					r.Position, r.CourseID, r.Score, r.ComparisonCount)
			}
		}
	}
}
