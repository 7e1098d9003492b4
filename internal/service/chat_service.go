package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"pergunte-ao-passado/internal/dto"
	"pergunte-ao-passado/internal/entity"
	"pergunte-ao-passado/internal/pkg/logger"
	"pergunte-ao-passado/internal/repository/contract"
	"pergunte-ao-passado/internal/repository/memory"
	"pergunte-ao-passado/pkg/docid"
	"pergunte-ao-passado/pkg/rag/answer"
	"pergunte-ao-passado/pkg/safety"
	"pergunte-ao-passado/pkg/store"

	"github.com/google/uuid"
)

// ErrSessionNotFound signals an unknown chat session id.
var ErrSessionNotFound = errors.New("chat session not found")

// Turn outcome modes reported to the client.
const (
	ModeAnswer          = "answer"
	ModeSafetyRejection = "safety_rejection"
)

// SafetyGate screens a raw query before any retrieval work happens.
type SafetyGate interface {
	Classify(ctx context.Context, query string) safety.Verdict
}

// QueryNormalizer detects the query language and rewrites foreign queries
// into the corpus language.
type QueryNormalizer interface {
	Normalize(ctx context.Context, query string) (string, string)
	Instruction(code string) string
}

// RetrievalPipeline embeds a query and runs the nearest-neighbor search.
type RetrievalPipeline interface {
	Retrieve(ctx context.Context, query string, topK int) ([]store.RetrievedItem, error)
}

// AnswerComposer generates the grounded answer from retrieved context.
type AnswerComposer interface {
	Compose(ctx context.Context, query string, items []store.RetrievedItem, languageInstruction string) (string, bool, error)
}

// IChatService defines the conversation service interface
type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetHighlights(ctx context.Context, sessionId uuid.UUID) (*dto.GetHighlightsResponse, error)
	DeleteSession(ctx context.Context, request *dto.DeleteSessionRequest) error
}

// chatService coordinates the per-turn pipeline: safety gate, language
// normalization, retrieval, answer composition and highlight bookkeeping.
type chatService struct {
	chatSessions contract.ChatSessionRepository
	chatMessages contract.ChatMessageRepository
	sessionRepo  *memory.SessionRepository

	gate       SafetyGate
	normalizer QueryNormalizer
	retriever  RetrievalPipeline
	composer   AnswerComposer

	topK   int
	logger logger.ILogger
}

func NewChatService(
	chatSessions contract.ChatSessionRepository,
	chatMessages contract.ChatMessageRepository,
	sessionRepo *memory.SessionRepository,
	gate SafetyGate,
	normalizer QueryNormalizer,
	retriever RetrievalPipeline,
	composer AnswerComposer,
	topK int,
	log logger.ILogger,
) IChatService {
	if topK <= 0 {
		topK = 3
	}
	return &chatService{
		chatSessions: chatSessions,
		chatMessages: chatMessages,
		sessionRepo:  sessionRepo,
		gate:         gate,
		normalizer:   normalizer,
		retriever:    retriever,
		composer:     composer,
		topK:         topK,
		logger:       log,
	}
}

// InitLLMLogger builds the plain-text logger shared by the RAG pipeline
// components. It writes to logs/llm_rag.log, falling back to stdout.
func InitLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (cs *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session := &entity.ChatSession{
		Title: fmt.Sprintf("Conversa de %s", time.Now().Format("02-01-2006 15:04")),
	}
	if err := cs.chatSessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	cs.sessionRepo.Save(store.NewSession(session.Id.String()))

	cs.logger.Info("chat", "Session created", map[string]interface{}{
		"session_id": session.Id.String(),
	})

	return &dto.CreateSessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
	}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	sessions, err := cs.chatSessions.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, s := range sessions {
		responses[i] = &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		}
	}
	return responses, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	if err := cs.requireSession(ctx, sessionId); err != nil {
		return nil, err
	}

	messages, err := cs.chatMessages.FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GetChatHistoryResponse, len(messages))
	for i, m := range messages {
		responses[i] = &dto.GetChatHistoryResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return responses, nil
}

// SendChat runs one conversation turn. The user message is committed
// first; a failure later in the pipeline leaves the transcript with the
// user message but no assistant reply, never a partial one.
func (cs *chatService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if err := cs.requireSession(ctx, request.ChatSessionId); err != nil {
		return nil, err
	}

	memSession, err := cs.loadSession(ctx, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	// Turns on the same session are serialized.
	memSession.Lock()
	defer memSession.Unlock()

	sent := &entity.ChatMessage{
		ChatSessionId: request.ChatSessionId,
		Role:          store.RoleUser,
		Content:       request.Content,
	}
	if err := cs.chatMessages.Create(ctx, sent); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}
	memSession.Append(store.RoleUser, request.Content)

	// Highlights always reset at the start of a turn; only a turn whose
	// retrieval yields sources switches them back on.
	memSession.ClearHighlights()

	// 1. Safety gate on the raw query, before any retrieval spend
	verdict := cs.gate.Classify(ctx, request.Content)
	if !verdict.IsSafe {
		cs.logger.Warn("chat", "Query rejected by safety gate", map[string]interface{}{
			"session_id": request.ChatSessionId.String(),
			"risk":       string(verdict.Risk),
			"confidence": string(verdict.Confidence),
		})
		return cs.finishTurn(ctx, request, memSession, sent, safety.Reply(verdict.Risk), ModeSafetyRejection, "", nil)
	}

	// 2. Language normalization (soft-fail: worst case retrieves raw)
	processed, langCode := cs.normalizer.Normalize(ctx, request.Content)

	// 3. Retrieval
	items, err := cs.retriever.Retrieve(ctx, processed, cs.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	// 4. Grounded generation
	answerText, hadSources, err := cs.composer.Compose(ctx, processed, items, cs.normalizer.Instruction(langCode))
	if err != nil {
		return nil, err
	}

	reply := answerText
	if hadSources {
		reply = reply + "\n\n" + answer.RenderSources(items)
	}

	cs.applyHighlights(memSession, items)
	memSession.LastQuery = processed

	return cs.finishTurn(ctx, request, memSession, sent, reply, ModeAnswer, langCode, items)
}

// finishTurn persists the assistant message, mirrors it into the memory
// session and assembles the response DTO.
func (cs *chatService) finishTurn(
	ctx context.Context,
	request *dto.SendChatRequest,
	memSession *store.Session,
	sent *entity.ChatMessage,
	reply string,
	mode string,
	langCode string,
	items []store.RetrievedItem,
) (*dto.SendChatResponse, error) {
	replyMessage := &entity.ChatMessage{
		ChatSessionId: request.ChatSessionId,
		Role:          store.RoleAssistant,
		Content:       reply,
	}
	if err := cs.chatMessages.Create(ctx, replyMessage); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}
	memSession.Append(store.RoleAssistant, reply)
	cs.sessionRepo.Save(memSession)

	if err := cs.chatSessions.Touch(ctx, request.ChatSessionId); err != nil {
		cs.logger.Warn("chat", "Failed to touch session timestamp", map[string]interface{}{
			"session_id": request.ChatSessionId.String(),
			"error":      err.Error(),
		})
	}

	return &dto.SendChatResponse{
		ChatSessionId: request.ChatSessionId,
		Sent: &dto.SendChatResponseChat{
			Id:        sent.Id,
			Role:      sent.Role,
			Content:   sent.Content,
			CreatedAt: sent.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        replyMessage.Id,
			Role:      replyMessage.Role,
			Content:   replyMessage.Content,
			CreatedAt: replyMessage.CreatedAt,
		},
		Mode:               mode,
		DetectedLanguage:   langCode,
		Sources:            mapSources(items),
		HighlightedIndices: memSession.HighlightedIndices,
		HighlightActive:    memSession.HighlightActive,
	}, nil
}

// applyHighlights decodes each retrieved id back to its corpus row index.
// Ids that do not follow the "doc_<row>" form are skipped, not fatal.
func (cs *chatService) applyHighlights(memSession *store.Session, items []store.RetrievedItem) {
	indices := make([]int, 0, len(items))
	for _, item := range items {
		row, err := docid.Decode(item.ID)
		if err != nil {
			cs.logger.Warn("chat", "Skipping undecodable document id", map[string]interface{}{
				"id":    item.ID,
				"error": err.Error(),
			})
			continue
		}
		indices = append(indices, row)
	}
	memSession.HighlightedIndices = indices
	memSession.HighlightActive = len(indices) > 0
}

func (cs *chatService) GetHighlights(ctx context.Context, sessionId uuid.UUID) (*dto.GetHighlightsResponse, error) {
	if err := cs.requireSession(ctx, sessionId); err != nil {
		return nil, err
	}

	response := &dto.GetHighlightsResponse{
		ChatSessionId:      sessionId,
		HighlightedIndices: []int{},
	}

	// Highlight state is volatile; an expired memory session simply
	// reads as "nothing highlighted".
	if memSession, found := cs.sessionRepo.Get(sessionId.String()); found {
		memSession.Lock()
		response.HighlightedIndices = append(response.HighlightedIndices, memSession.HighlightedIndices...)
		response.HighlightActive = memSession.HighlightActive
		response.LastQuery = memSession.LastQuery
		memSession.Unlock()
	}
	return response, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, request *dto.DeleteSessionRequest) error {
	if err := cs.requireSession(ctx, request.ChatSessionId); err != nil {
		return err
	}

	if err := cs.chatMessages.DeleteBySessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := cs.chatSessions.Delete(ctx, request.ChatSessionId); err != nil {
		return err
	}
	cs.sessionRepo.Delete(request.ChatSessionId.String())
	return nil
}

func (cs *chatService) requireSession(ctx context.Context, sessionId uuid.UUID) error {
	session, err := cs.chatSessions.FindById(ctx, sessionId)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	return nil
}

// loadSession returns the memory session, rebuilding the transcript from
// persisted history when the cache entry expired.
func (cs *chatService) loadSession(ctx context.Context, sessionId uuid.UUID) (*store.Session, error) {
	if memSession, found := cs.sessionRepo.Get(sessionId.String()); found {
		return memSession, nil
	}

	memSession := store.NewSession(sessionId.String())
	messages, err := cs.chatMessages.FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	for _, m := range messages {
		memSession.Append(m.Role, m.Content)
	}
	cs.sessionRepo.Save(memSession)
	return memSession, nil
}

func mapSources(items []store.RetrievedItem) []dto.SourceDTO {
	if len(items) == 0 {
		return nil
	}
	sources := make([]dto.SourceDTO, len(items))
	for i, item := range items {
		link := item.Metadata["link"]
		if link == "" {
			link = item.Metadata["parent_linkToArchive"]
		}
		sources[i] = dto.SourceDTO{
			Id:         item.ID,
			Title:      item.Metadata["parent_title"],
			Link:       link,
			Similarity: item.Similarity(),
			Metadata:   item.Metadata,
		}
	}
	return sources
}
