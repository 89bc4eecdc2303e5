package main

import (
	"fmt"
	"log"
	"os"

	sqlitestore "github.com/courtside-data/stroke.report/internal/storage/sqlite"
)

// runMigrateCommand handles the 'migrate' subcommand dispatching.
func runMigrateCommand(args []string, dbPath string) {
	if len(args) < 1 {
		printMigrateHelp()
		os.Exit(1)
	}

	db, err := sqlitestore.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	switch args[0] {
	case "up":
		if err := sqlitestore.MigrateUp(db); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		fmt.Println("migrations applied")

	case "down":
		if err := sqlitestore.MigrateDown(db); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		fmt.Println("rolled back one migration")

	case "status":
		version, dirty, err := sqlitestore.MigrateVersion(db)
		if err != nil {
			log.Fatalf("migrate status: %v", err)
		}
		fmt.Printf("version=%d dirty=%v\n", version, dirty)

	case "help":
		printMigrateHelp()

	default:
		fmt.Printf("Unknown migrate action: %s\n\n", args[0])
		printMigrateHelp()
		os.Exit(1)
	}
}

func printMigrateHelp() {
	fmt.Println(`Usage: stroke-report [-db path] migrate <action>

Actions:
  up       apply all pending migrations
  down     roll back the most recent migration
  status   print the current migration version
  help     show this help`)
}
