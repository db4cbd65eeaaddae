// Command main seeds the catalog database with demo data.
package main

import (
	"flag"
	"log"
	"os"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numProducts := flag.Int("products", 200, "Number of products to create")
	likesPerUser := flag.Int("likes", 5, "Likes per user")
	shouldClean := flag.Bool("clean", true, "Remove products, likes and non-admin users first")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing to the database")
	csvOut := flag.String("csv", "", "Write an ingestion CSV with -products rows to this path instead of seeding")
	flag.Parse()

	if *csvOut != "" {
		if err := writeCSV(*csvOut, *numProducts); err != nil {
			log.Fatalf("Failed to write CSV: %v", err)
		}
		log.Printf("Wrote %d products to %s", *numProducts, *csvOut)
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:     *numUsers,
		NumProducts:  *numProducts,
		LikesPerUser: *likesPerUser,
		ShouldClean:  *shouldClean,
		DryRun:       *dryRun,
	}
	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}

func writeCSV(path string, rows int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := seed.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
