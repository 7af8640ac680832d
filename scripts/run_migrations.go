package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/CodeWizard18/AgriConnect/internal/config"
	"github.com/CodeWizard18/AgriConnect/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down]")
	}

	direction := os.Args[1]
	if direction != "up" && direction != "down" {
		log.Fatal("Direction must be 'up' or 'down'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	pattern := filepath.Join("migrations", fmt.Sprintf("*.%s.sql", direction))
	files, err := filepath.Glob(pattern)
	if err != nil {
		log.Fatalf("Glob migrations: %v", err)
	}

	sort.Strings(files)
	if direction == "down" {
		// Down migrations undo in reverse order.
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Read migration file %s: %v", path, err)
		}

		log.Printf("Running migration: %s", filepath.Base(path))
		if _, err := db.Exec(string(content)); err != nil {
			log.Fatalf("Execute migration %s: %v", path, err)
		}
	}

	log.Printf("Successfully ran %d migration(s) %s", len(files), direction)
}
