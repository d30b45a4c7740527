package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/888Greys/rag-ai/internal/api"
	"github.com/888Greys/rag-ai/internal/api/middleware"
	"github.com/888Greys/rag-ai/internal/domain"
	"github.com/888Greys/rag-ai/internal/pagination"
	"github.com/888Greys/rag-ai/internal/service"
)

type ChatServiceInterface interface {
	StreamChat(ctx context.Context, req service.ChatRequest, sink service.TokenSink) error
	GetConversation(ctx context.Context, author, id string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, author, cursor string, limit int) (*service.ConversationPageResult, error)
}

type ChatHandler struct {
	svc ChatServiceInterface
}

func NewChatHandler(svc ChatServiceInterface) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequestBody struct {
	ID                    string           `json:"id"`
	Messages              []domain.Message `json:"messages"`
	SelectedFilePathnames []string         `json:"selectedFilePathnames"`
}

// Stream handles POST /chat: it streams the assistant's answer back as
// server-sent events. Tokens arrive as `token` events; the stream ends
// with a `done` event, or an `error` event when generation fails after
// headers have been sent.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body ChatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sink, err := newSSEWriter(w)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	req := service.ChatRequest{
		ConversationID: body.ID,
		Author:         email,
		Messages:       body.Messages,
		SelectedPaths:  body.SelectedFilePathnames,
	}

	// Validation errors are caught before the first token, so they can
	// still go out as plain JSON with a proper status code.
	if err := h.svc.StreamChat(r.Context(), req, sink); err != nil {
		if !sink.started() {
			api.HandleError(w, err)
			return
		}
		sink.sendError(err)
		return
	}
	sink.sendDone()
}

type ConversationSummary struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ConversationResponse struct {
	ID        string           `json:"id"`
	Messages  []domain.Message `json:"messages"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
}

const timeLayout = "2006-01-02T15:04:05Z"

// List handles GET /chats with cursor pagination.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.svc.ListConversations(r.Context(), email, r.URL.Query().Get("cursor"), 0)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	result := pagination.PageResult[ConversationSummary]{
		Items:   make([]ConversationSummary, 0, len(page.Items)),
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}
	for _, c := range page.Items {
		result.Items = append(result.Items, ConversationSummary{
			ID:        c.ID,
			CreatedAt: c.CreatedAt.UTC().Format(timeLayout),
			UpdatedAt: c.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	api.Success(w, http.StatusOK, result)
}

// Get handles GET /chats/{id}.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversation, err := h.svc.GetConversation(r.Context(), email, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ConversationResponse{
		ID:        conversation.ID,
		Messages:  conversation.Messages,
		CreatedAt: conversation.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt: conversation.UpdatedAt.UTC().Format(timeLayout),
	})
}
