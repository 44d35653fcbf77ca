package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	"google.golang.org/api/iterator"

	"github.com/acolhimento-gf/visitantes-api/internal/platform/config"
	firestoreclient "github.com/acolhimento-gf/visitantes-api/internal/platform/firestore"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
	"github.com/acolhimento-gf/visitantes-api/pkg/util"
)

func main() {
	docID := flag.String("id", "", "Print a single visitor document by ID")
	limit := flag.Int("limit", 50, "Number of visitors to sample when no ID is given")
	flag.Parse()

	ctx := context.Background()
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

	if *docID != "" {
		if err := printDocument(ctx, client, *docID); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := sampleVisitors(ctx, client, *limit); err != nil {
		log.Fatal(err)
	}
}

func printDocument(ctx context.Context, client *firestore.Client, id string) error {
	doc, err := client.Collection("visitantes").Doc(id).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	jsonData, err := json.MarshalIndent(doc.Data(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	fmt.Printf("Document ID: %s\n\n", id)
	fmt.Println(string(jsonData))

	var v model.Visitor
	if err := doc.DataTo(&v); err != nil {
		return fmt.Errorf("document does not decode as a visitor: %w", err)
	}
	fmt.Printf("\n=== Specific field checks ===\n")
	fmt.Printf("status:           %q\n", v.Status)
	fmt.Printf("endereco.cep:     %q\n", v.Endereco.CEP)
	fmt.Printf("endereco.cidade:  %q\n", v.Endereco.Cidade)
	fmt.Printf("needs cleanup:    %v\n", util.NeedsCleanup(v))
	return nil
}

func sampleVisitors(ctx context.Context, client *firestore.Client, limit int) error {
	iter := client.Collection("visitantes").Limit(limit).Documents(ctx)
	defer iter.Stop()

	statusCounts := make(map[string]int)
	missingCity := 0
	dirty := 0
	total := 0

	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("error iterating: %w", err)
		}
		var v model.Visitor
		if err := doc.DataTo(&v); err != nil {
			log.Printf("Warning: failed to parse doc %s: %v", doc.Ref.ID, err)
			continue
		}
		total++
		statusCounts[v.Status]++
		if v.Endereco.Cidade == "" {
			missingCity++
		}
		if util.NeedsCleanup(v) {
			dirty++
		}
	}

	fmt.Printf("Sampled %d visitors\n\n", total)
	fmt.Println("Status distribution:")
	statuses := make([]string, 0, len(statusCounts))
	for s := range statusCounts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		label := s
		if label == "" {
			label = "(empty)"
		}
		fmt.Printf("  %-20s %d\n", label, statusCounts[s])
	}
	fmt.Printf("\nMissing city:      %d\n", missingCity)
	fmt.Printf("Needs cleanup:     %d\n", dirty)
	return nil
}
