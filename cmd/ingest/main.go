package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"pergunte-ao-passado/internal/config"
	"pergunte-ao-passado/internal/ingest"
	"pergunte-ao-passado/internal/model"
	"pergunte-ao-passado/internal/repository/implementation"
	"pergunte-ao-passado/pkg/database"
	"pergunte-ao-passado/pkg/embedding"

	"github.com/fatih/color"
)

func main() {
	inputPath := flag.String("input", "", "archive JSON file or directory of JSON files")
	batchSize := flag.Int("batch", 32, "texts per embedding request batch")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("Error: -input is required")
	}

	cfg := config.Load()
	ctx := context.Background()

	// 1. Connect and migrate
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	color.Cyan("Preparing schema...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Fatalf("Error: Failed to create vector extension: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatalf("Error: Failed to create pgcrypto extension: %v", err)
	}
	if err := db.AutoMigrate(&model.Document{}, &model.ChatSession{}, &model.ChatMessage{}); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	// 2. Load and clean the archive dump
	color.Cyan("Loading archive entries from %s...", *inputPath)
	entries, err := ingest.LoadEntries(*inputPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	documents := ingest.ToDocuments(entries)
	color.Green("Prepared %d document(s)", len(documents))

	// 3. Embed in batches
	provider, err := newEmbeddingProvider(cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := model.ValidateEmbeddingWidth(provider.Dimension()); err != nil {
		log.Fatalf("Error: %v", err)
	}

	for start := 0; start < len(documents); start += *batchSize {
		end := start + *batchSize
		if end > len(documents) {
			end = len(documents)
		}

		texts := make([]string, 0, end-start)
		for _, d := range documents[start:end] {
			texts = append(texts, d.Text)
		}

		vectors, err := provider.EmbedBatch(ctx, texts)
		if err != nil {
			color.Red("Embedding batch %d-%d failed: %v", start, end-1, err)
			log.Fatal("Aborting, nothing was written")
		}
		for i, v := range vectors {
			if len(v) != provider.Dimension() {
				log.Fatalf("Error: vector width %d does not match provider dimension %d", len(v), provider.Dimension())
			}
			documents[start+i].Embedding = v
		}
		color.Yellow("Embedded %d/%d", end, len(documents))
	}

	// 4. Persist
	repo := implementation.NewDocumentRepository(db)
	if err := repo.CreateBulk(ctx, documents); err != nil {
		log.Fatalf("Error: Failed to insert documents: %v", err)
	}

	color.Green("Ingestion complete: %d document(s) stored", len(documents))
}

func newEmbeddingProvider(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "openai":
		return embedding.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.OpenAIEmbeddingModel), nil
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}
