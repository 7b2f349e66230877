package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL not set in environment")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := run(db, *mode, "./migrations"); err != nil {
		log.Fatal(err)
	}
}

func run(db *sql.DB, mode, migrationsDir string) error {
	// Ensure schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	switch mode {
	case "up":
		files, err := globSorted(migrationsDir, "*.up.sql")
		if err != nil {
			return err
		}
		return runMigrationsUp(db, files)
	case "down":
		files, err := globSorted(migrationsDir, "*.down.sql")
		if err != nil {
			return err
		}
		return runMigrationsDown(db, files)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

func globSorted(dir, pattern string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func runMigrationsUp(db *sql.DB, files []string) error {
	for _, file := range files {
		version := migrationVersion(file)

		var exists bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			fmt.Printf("⏭ Skipping already applied migration: %s\n", version)
			continue
		}

		if err := applyMigration(db, file, version, true); err != nil {
			return err
		}
		fmt.Printf("✅ Applied migration: %s\n", version)
	}
	return nil
}

func runMigrationsDown(db *sql.DB, files []string) error {
	// Revert in reverse order, applied versions only.
	for i := len(files) - 1; i >= 0; i-- {
		file := files[i]
		version := migrationVersion(file)

		var exists bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if !exists {
			continue
		}

		if err := applyMigration(db, file, version, false); err != nil {
			return err
		}
		fmt.Printf("↩ Reverted migration: %s\n", version)
	}
	return nil
}

func applyMigration(db *sql.DB, file, version string, up bool) error {
	contents, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(contents)); err != nil {
		return fmt.Errorf("failed to run %s: %w", file, err)
	}

	if up {
		_, err = tx.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, version)
	} else {
		_, err = tx.Exec(`DELETE FROM schema_migrations WHERE version = $1`, version)
	}
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", version, err)
	}

	return tx.Commit()
}

// migrationVersion strips the direction suffix so up and down files share
// one version key.
func migrationVersion(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, ".up.sql")
	base = strings.TrimSuffix(base, ".down.sql")
	return base
}
