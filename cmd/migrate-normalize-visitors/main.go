package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/acolhimento-gf/visitantes-api/internal/platform/config"
	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/internal/repository/stores"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
	"github.com/acolhimento-gf/visitantes-api/pkg/util"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Preview changes without writing to the store")
	batchSize := flag.Int("batch", 100, "Number of visitors written per batch")
	flag.Parse()

	ctx := context.Background()

	// Load environment variables
	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	set, err := stores.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer set.Close()

	log.Printf("Connected to %s store using %s", set.Backend, set.Source)

	mode := "LIVE"
	if *dryRun {
		mode = "DRY-RUN"
	}

	fmt.Printf("\n=== Visitor Normalization Migration [%s] ===\n", mode)
	fmt.Println("==========================================")

	if err := normalizeVisitors(ctx, set.Visitors, *dryRun, *batchSize); err != nil {
		log.Fatalf("Failed to normalize visitors: %v", err)
	}

	fmt.Println("==========================================")
	fmt.Println("Migration completed!")
}

func normalizeVisitors(ctx context.Context, store repository.VisitorStore, dryRun bool, batchSize int) error {
	fmt.Println("\nScanning visitors...")

	total := 0
	var toUpdate []model.Visitor

	err := store.StreamAll(ctx, func(v model.Visitor) error {
		total++
		if !util.NeedsCleanup(v) {
			return nil
		}
		cleaned := v
		cleaned.Endereco = util.CleanAddress(v.Endereco)
		cleaned.Telefone = util.MaskPhone(v.Telefone)
		toUpdate = append(toUpdate, cleaned)

		// Show sample in dry-run mode
		if dryRun && len(toUpdate) <= 5 {
			fmt.Printf("\n--- Sample %d: %s ---\n", len(toUpdate), v.Nome)
			fmt.Printf("BEFORE: tel=%q cep=%q cidade=%q estado=%q\n", v.Telefone, v.Endereco.CEP, v.Endereco.Cidade, v.Endereco.Estado)
			fmt.Printf("AFTER:  tel=%q cep=%q cidade=%q estado=%q\n", cleaned.Telefone, cleaned.Endereco.CEP, cleaned.Endereco.Cidade, cleaned.Endereco.Estado)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan visitors: %w", err)
	}

	fmt.Printf("\n=== Analysis Summary ===\n")
	fmt.Printf("Total visitors:     %d\n", total)
	fmt.Printf("Need cleanup:       %d\n", len(toUpdate))
	fmt.Printf("Already clean:      %d\n", total-len(toUpdate))

	if len(toUpdate) == 0 {
		fmt.Println("\nNo visitors need cleanup!")
		return nil
	}
	if dryRun {
		fmt.Printf("\n[DRY-RUN] Would update %d visitors. Run without --dry-run to apply changes.\n", len(toUpdate))
		return nil
	}

	if batchSize <= 0 {
		batchSize = 100
	}
	updated := 0
	for i := 0; i < len(toUpdate); i += batchSize {
		end := i + batchSize
		if end > len(toUpdate) {
			end = len(toUpdate)
		}
		if err := store.BatchUpsert(ctx, toUpdate[i:end]); err != nil {
			return fmt.Errorf("failed to write batch: %w", err)
		}
		updated += end - i
		fmt.Printf("  Progress: %d/%d visitors cleaned\n", updated, len(toUpdate))
	}

	fmt.Printf("\n✓ Successfully cleaned %d visitors\n", updated)
	return nil
}
