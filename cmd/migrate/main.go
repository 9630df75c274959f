// ABOUTME: Migration utility copying a SQLite prospecta database into a KV backend
// ABOUTME: Preserves record ids so links between prospects and their records survive

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/harperreed/prospecta/charm"
	"github.com/harperreed/prospecta/config"
	"github.com/harperreed/prospecta/db"
	"github.com/harperreed/prospecta/store"
)

func main() {
	dbPath := flag.String("db", config.DefaultDBPath(), "Path to the SQLite database")
	target := flag.String("to", config.BackendBadger, "Target backend: badger or charm")
	kvPath := flag.String("kv", config.DefaultKVPath(), "BadgerDB directory (badger target)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Create backup before migration")
	flag.Parse()

	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		log.Fatalf("Error: database file does not exist: %s", *dbPath)
	}

	if *backup && !*dryRun {
		if err := backupFile(*dbPath); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
	}

	database, err := db.OpenDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = database.Close() }()

	var client *charm.Client
	switch *target {
	case config.BackendBadger:
		c, bkv, err := charm.OpenLocal(*kvPath)
		if err != nil {
			log.Fatalf("Failed to open badger: %v", err)
		}
		defer func() { _ = bkv.Close() }()
		client = c
	case config.BackendCharm:
		c, err := charm.Open(charm.DefaultConfig())
		if err != nil {
			log.Fatalf("Failed to open charm: %v", err)
		}
		client = c
	default:
		log.Fatalf("Error: unknown target %q", *target)
	}

	counts, err := migrate(context.Background(), db.NewStore(database), charm.NewStore(client), *dryRun)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	for _, kind := range store.Kinds() {
		prefix := ""
		if *dryRun {
			prefix = "[DRY RUN] would copy "
		}
		log.Printf("%s%d %s", prefix, counts[kind], kind)
	}
	if client.Remote() && !*dryRun {
		if err := client.Sync(); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
	}

	log.Println("Migration completed successfully")
}

// migrate copies every record of src into dst under its original id,
// parents first. A dry run only counts.
func migrate(ctx context.Context, src store.Store, dst store.Importer, dryRun bool) (map[store.Kind]int, error) {
	counts := make(map[store.Kind]int, len(store.Kinds()))
	for _, kind := range store.Kinds() {
		recs, err := src.List(ctx, kind, nil)
		if err != nil {
			return counts, fmt.Errorf("failed to read %s: %w", kind, err)
		}
		if dryRun {
			counts[kind] = len(recs)
			continue
		}
		for _, rec := range recs {
			if err := dst.Import(ctx, kind, rec); err != nil {
				return counts, fmt.Errorf("failed to import %s %d: %w", kind, rec.ID, err)
			}
			counts[kind]++
		}
	}
	return counts, nil
}

func backupFile(path string) error {
	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
	log.Printf("Creating backup: %s", backupPath)

	input, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}
	if err := os.WriteFile(backupPath, input, 0600); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	log.Printf("Backup created successfully")
	return nil
}
