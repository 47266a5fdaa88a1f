// Command migrate runs schema operations for the Circle database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"circle/internal/config"
	"circle/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status|down> [version]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
	case "status":
		states, err := database.Status(ctx, db)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		pending := 0
		for _, st := range states {
			mark := "applied"
			if !st.Applied {
				mark = "pending"
				pending++
			}
			log.Printf("%s: %s", mark, st.Migration.String())
		}
		log.Printf("env=%s registered=%d pending=%d", cfg.Env, len(states), pending)
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: go run ./cmd/migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		m := database.GetMigrationByVersion(version)
		if m == nil {
			return fmt.Errorf("no migration with version %d", version)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back %s", m.String())
	default:
		return usage()
	}

	return nil
}
