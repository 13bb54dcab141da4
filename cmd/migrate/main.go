// Command migrate prepares the PostgreSQL schema for mind map storage and
// can optionally seed sample mind maps for the local user.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"infinitism/internal/app"
	"infinitism/internal/config"
	"infinitism/internal/domain/services"
	"infinitism/internal/repository/postgres"
)

// sampleTexts seed the local user's library.
var sampleTexts = []string{
	`Cell biology studies the structure and function of cells. The membrane
controls what enters and leaves the cell. The nucleus stores DNA and directs
protein synthesis. Mitochondria produce energy through respiration.`,
	`Photosynthesis converts light energy into chemical energy. Chlorophyll
absorbs light in the chloroplasts. The light reactions split water and
release oxygen, and the Calvin cycle fixes carbon dioxide into sugar.`,
}

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before migrating (fresh start)")
	clearData := flag.Bool("clear-data", false, "Delete all mind maps (keep schema)")
	seed := flag.Bool("seed", false, "Generate sample mind maps for the local user")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is not set")
	}

	// SAFETY: no destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Printf("🏗️  Migrating (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *clearData {
		n, err := postgres.ClearData(ctx, pool, tables)
		if err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Printf("🧹 Removed %d mind maps", n)
	}

	if !*seed {
		return
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer a.Close()

	for i, text := range sampleTexts {
		m, err := a.Mindmaps.Generate(ctx, &services.GenerateRequest{UserID: config.LocalUserID, Text: text})
		if err != nil {
			log.Printf("❌ Failed to seed sample %d: %v", i+1, err)
			continue
		}
		stats := m.Data.Stats()
		log.Printf("✅ Seeded %d/%d: %q (ID: %s, nodes: %d, source: %s)",
			i+1, len(sampleTexts), m.Data.Title, m.ID, stats.NodeCount, m.Generation.Source)
	}
	log.Println("🎉 Seeding complete!")
}
