// Command main fills the database with demo communities, challenges and votes.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"circle/internal/bootstrap"
	"circle/internal/config"
	"circle/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 40, "Number of users to create")
	numCommunities := flag.Int("communities", 6, "Number of communities to create")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	flag.Parse()

	if *randSeed == 0 {
		*randSeed = time.Now().UnixNano()
	}
	log.Printf("Seeding %d users, %d communities (seed=%d)", *numUsers, *numCommunities, *randSeed)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SyncBadges: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	summary, err := seed.NewSeeder(db, bootstrap.Points(cfg)).Run(ctx, seed.Options{
		Users:       *numUsers,
		Communities: *numCommunities,
		Seed:        *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d communities, %d challenges, %d submissions, %d votes",
		summary.Users, summary.Communities, summary.Challenges, summary.Submissions, summary.Votes)
}
