package bootstrap

import (
	"context"
	"fmt"

	"pergunte-ao-passado/internal/config"
	"pergunte-ao-passado/internal/controller"
	"pergunte-ao-passado/internal/model"
	"pergunte-ao-passado/internal/pkg/logger"
	"pergunte-ao-passado/internal/repository/implementation"
	"pergunte-ao-passado/internal/repository/memory"
	"pergunte-ao-passado/internal/service"
	"pergunte-ao-passado/pkg/embedding"
	"pergunte-ao-passado/pkg/language"
	"pergunte-ao-passado/pkg/llm/factory"
	"pergunte-ao-passado/pkg/rag/answer"
	"pergunte-ao-passado/pkg/rag/retriever"
	"pergunte-ao-passado/pkg/safety"

	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	ChatController   controller.IChatController
	CorpusController controller.ICorpusController
}

// NewContainer wires repositories, AI providers and the turn pipeline.
// It fails fast when the corpus was never ingested.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core facades
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := service.InitLLMLogger()

	// 2. AI providers
	embeddingProvider, err := newEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateEmbeddingWidth(embeddingProvider.Dimension()); err != nil {
		return nil, err
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		return nil, err
	}

	// 3. Repositories
	documentRepo := implementation.NewDocumentRepository(db)
	chatSessionRepo := implementation.NewChatSessionRepository(db)
	chatMessageRepo := implementation.NewChatMessageRepository(db)
	sessionRepo := memory.NewSessionRepository()

	if err := documentRepo.EnsureCollection(context.Background()); err != nil {
		return nil, fmt.Errorf("corpus check failed (run cmd/ingest first): %w", err)
	}

	// 4. Turn pipeline components
	gate := safety.NewGate(llmProvider, llmLogger)
	normalizer := language.NewNormalizer(llmProvider, llmLogger)
	retrievalPipeline := retriever.NewPipeline(
		embeddingProvider,
		service.NewDocumentSearcher(documentRepo),
		llmLogger,
	)
	composer := answer.NewComposer(llmProvider, llmLogger, cfg.Ai.Temperature, cfg.Ai.MaxTokens)

	// 5. Services
	chatService := service.NewChatService(
		chatSessionRepo,
		chatMessageRepo,
		sessionRepo,
		gate,
		normalizer,
		retrievalPipeline,
		composer,
		cfg.Ai.TopK,
		appLogger,
	)
	corpusService := service.NewCorpusService(documentRepo, appLogger)

	// 6. Controllers
	return &Container{
		Logger:           appLogger,
		ChatController:   controller.NewChatController(chatService),
		CorpusController: controller.NewCorpusController(corpusService),
	}, nil
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
