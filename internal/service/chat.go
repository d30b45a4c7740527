package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/888Greys/rag-ai/internal/domain"
	"github.com/888Greys/rag-ai/internal/pagination"
	"github.com/888Greys/rag-ai/internal/telemetry"
)

// ConversationRepositoryInterface defines the repository interface for
// conversation persistence.
type ConversationRepositoryInterface interface {
	Upsert(ctx context.Context, c *domain.Conversation) error
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	ListByAuthorWithCursor(ctx context.Context, author string, cursor *pagination.Cursor, limit int) (*ConversationPageResult, error)
}

type ConversationPageResult struct {
	Items      []*domain.Conversation
	NextCursor string
	HasMore    bool
}

// TokenSink receives stream events as they arrive. Send returning an
// error means the client is gone and relaying should stop.
type TokenSink interface {
	Send(event domain.StreamEvent) error
}

// ChatRequest is one chat turn from a client.
type ChatRequest struct {
	ConversationID string
	Author         string
	Messages       []domain.Message
	SelectedPaths  []string
}

// ChatService coordinates a chat turn: it validates the request, streams
// the generated answer to the caller, and persists the finished
// conversation.
type ChatService struct {
	generator Generator
	repo      ConversationRepositoryInterface
}

// NewChatService creates a new ChatService instance.
func NewChatService(generator Generator, repo ConversationRepositoryInterface) *ChatService {
	return &ChatService{generator: generator, repo: repo}
}

const defaultPageLimit = 20

// StreamChat runs one chat turn, relaying every token to sink. On
// normal completion the conversation is upserted with the assistant's
// full answer appended; a cancelled context or mid-stream failure skips
// persistence so half answers are never stored. The terminal error, if
// any, is returned after the sink has seen it.
func (s *ChatService) StreamChat(ctx context.Context, req ChatRequest, sink TokenSink) error {
	if err := s.validate(req); err != nil {
		return err
	}

	ctx, span := telemetry.StartSpan(ctx, "ChatService.StreamChat", telemetry.SpanAttributes{
		UserEmail:      req.Author,
		ConversationID: req.ConversationID,
		Operation:      "chat",
	})
	defer span.End()

	events, err := s.generator.Generate(ctx, GenerateRequest{
		Author:        req.Author,
		Conversation:  req.ConversationID,
		Messages:      req.Messages,
		SelectedPaths: req.SelectedPaths,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	var answer strings.Builder
	for event := range events {
		if event.Err != nil {
			// Client sees the failure as a terminal event; sink errors
			// at this point change nothing.
			_ = sink.Send(event)
			return fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, event.Err)
		}
		if err := sink.Send(event); err != nil {
			return fmt.Errorf("send token: %w", err)
		}
		answer.WriteString(event.Token)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	conversation := &domain.Conversation{
		ID:     req.ConversationID,
		Author: req.Author,
		Messages: append(append([]domain.Message{}, req.Messages...), domain.Message{
			Role:    domain.RoleAssistant,
			Content: answer.String(),
		}),
	}
	// Persistence must survive the request context so a disconnect
	// after the final token still stores the answer.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.Upsert(saveCtx, conversation); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *ChatService) validate(req ChatRequest) error {
	if req.ConversationID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "conversation id is required")
	}
	if domain.LastUserMessage(req.Messages) == "" {
		return domain.ErrMissingMessage
	}
	for _, path := range req.SelectedPaths {
		if domain.IsSharedPath(path) {
			continue
		}
		if !domain.OwnsPath(req.Author, path) {
			return domain.ErrPathNotOwned
		}
	}
	return nil
}

// GetConversation returns a conversation if it belongs to author.
func (s *ChatService) GetConversation(ctx context.Context, author, id string) (*domain.Conversation, error) {
	conversation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, domain.ErrConversationNotFound
	}
	if conversation.Author != author {
		return nil, domain.ErrConversationNotFound
	}
	return conversation, nil
}

// ListConversations returns a page of the author's conversations, most
// recent first.
func (s *ChatService) ListConversations(ctx context.Context, author, cursor string, limit int) (*ConversationPageResult, error) {
	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor")
		}
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = defaultPageLimit
	}
	return s.repo.ListByAuthorWithCursor(ctx, author, decoded, limit)
}
