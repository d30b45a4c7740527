package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/888Greys/rag-ai/internal/domain"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from text-embedding-3-small
	DefaultEmbeddingDimensions = 1536
	// DefaultChatModel is the OpenAI model used for completions and chat streaming
	DefaultChatModel = openai.GPT4oMini
)

var (
	// ErrEmptyBatch is returned when the embedding input is empty
	ErrEmptyBatch = errors.New("batch cannot be empty")
	// ErrWrongDimensions is returned when an embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrCountMismatch is returned when the API returns fewer embeddings than inputs
	ErrCountMismatch = errors.New("embedding count does not match input count")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// API defines the OpenAI operations the client depends on.
type API interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	CreateCompletion(ctx context.Context, system, prompt string) (string, error)
	CreateChatStream(ctx context.Context, messages []openai.ChatCompletionMessage) (ChatStream, error)
}

// ChatStream yields completion deltas one at a time. Recv returns io.EOF
// when the model is done.
type ChatStream interface {
	Recv() (string, error)
	Close() error
}

// Client wraps the OpenAI API client
type Client struct {
	api        API
	dimensions int
}

type OpenAIAdapter struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	chatModel      string
}

func NewOpenAIAdapter(apiKey string, embeddingModel openai.EmbeddingModel, chatModel string) *OpenAIAdapter {
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	return &OpenAIAdapter{
		client:         openai.NewClient(apiKey),
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
	}
}

// CreateEmbeddings calls the OpenAI API to embed a batch of texts in one
// request. Results come back in input order.
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(embeddings) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}
	return embeddings, nil
}

// CreateCompletion calls the OpenAI API for a single chat completion.
func (a *OpenAIAdapter) CreateCompletion(ctx context.Context, system, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

type openaiChatStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openaiChatStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *openaiChatStream) Close() error {
	return s.stream.Close()
}

// CreateChatStream opens a streaming chat completion.
func (a *OpenAIAdapter) CreateChatStream(ctx context.Context, messages []openai.ChatCompletionMessage) (ChatStream, error) {
	stream, err := a.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    a.chatModel,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}
	return &openaiChatStream{stream: stream}, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	ChatModel           string
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		api:        NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel, cfg.ChatModel),
		dimensions: dimensions,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// EmbedBatch embeds texts in one API call, preserving input order. All
// embeddings must have the configured dimension.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}

	embeddings, err := c.api.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, ErrCountMismatch
	}

	expected := c.dimensions
	if expected <= 0 {
		expected = DefaultEmbeddingDimensions
	}
	for _, e := range embeddings {
		if len(e) != expected {
			return nil, ErrWrongDimensions
		}
	}
	return embeddings, nil
}

// Complete returns a single non-streaming completion.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	out, err := c.api.CreateCompletion(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}
	return out, nil
}

// Stream starts a streaming completion over the given conversation. The
// returned channel carries one event per token delta and is closed when
// the model finishes; a stream failure arrives as a final event with Err
// set.
func (c *Client) Stream(ctx context.Context, system string, messages []domain.Message) (<-chan domain.StreamEvent, error) {
	request := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		request = append(request, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range messages {
		request = append(request, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	stream, err := c.api.CreateChatStream(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat stream: %w", err)
	}

	events := make(chan domain.StreamEvent)
	go func() {
		defer close(events)
		defer stream.Close()
		for {
			token, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case events <- domain.StreamEvent{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			if token == "" {
				continue
			}
			select {
			case events <- domain.StreamEvent{Token: token}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
