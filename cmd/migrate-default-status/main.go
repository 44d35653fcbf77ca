package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"

	"github.com/acolhimento-gf/visitantes-api/internal/platform/config"
	firestoreclient "github.com/acolhimento-gf/visitantes-api/internal/platform/firestore"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Count documents without writing to Firestore")
	flag.Parse()

	ctx := context.Background()

	// Load environment variables
	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, credsSource, err := firestoreclient.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to Firestore project %s using %s credentials", cfg.FirebaseProjectID, credsSource)

	fmt.Println("Starting migration: defaulting visitor status to \"" + model.StatusPending + "\"...")
	fmt.Println("========================================")

	if err := migrateVisitors(ctx, client, *dryRun); err != nil {
		log.Fatalf("Failed to migrate visitantes: %v", err)
	}

	fmt.Println("========================================")
	fmt.Println("Migration completed successfully!")
}

func migrateVisitors(ctx context.Context, client *firestore.Client, dryRun bool) error {
	docs, err := client.Collection("visitantes").Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to get visitantes: %w", err)
	}

	total := len(docs)
	fmt.Printf("Found %d visitor documents\n", total)
	if total == 0 {
		fmt.Println("No visitors to migrate")
		return nil
	}

	// Firestore caps a batch at 500 writes; smaller batches keep retries cheap.
	batchSize := 100
	updated := 0
	skipped := 0

	for i := 0; i < total; i += batchSize {
		end := i + batchSize
		if end > total {
			end = total
		}

		batch := client.Batch()
		batchCount := 0

		for _, doc := range docs[i:end] {
			if status, ok := doc.Data()["status"].(string); ok && status != "" {
				skipped++
				continue
			}
			batch.Update(doc.Ref, []firestore.Update{
				{Path: "status", Value: model.StatusPending},
			})
			batchCount++
			updated++
		}

		if batchCount > 0 && !dryRun {
			if _, err := batch.Commit(ctx); err != nil {
				return fmt.Errorf("failed to commit batch: %w", err)
			}
			fmt.Printf("  Processed %d/%d documents...\n", end, total)
		}
	}

	if dryRun {
		fmt.Printf("[DRY-RUN] Would update %d documents, %d already have a status\n", updated, skipped)
		return nil
	}
	fmt.Printf("✓ Visitor migration complete: %d updated, %d skipped\n", updated, skipped)
	return nil
}
