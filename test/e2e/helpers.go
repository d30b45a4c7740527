//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/888Greys/rag-ai/internal/api/handlers"
	"github.com/888Greys/rag-ai/internal/domain"
	"github.com/888Greys/rag-ai/internal/openai"
	"github.com/888Greys/rag-ai/internal/repository"
	"github.com/888Greys/rag-ai/internal/server"
	"github.com/888Greys/rag-ai/internal/service"
	"github.com/888Greys/rag-ai/internal/storage"
	"github.com/888Greys/rag-ai/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	testToken = "e2e-test-token"
	testUser  = "e2e@example.com"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	// Start PostgreSQL container
	pgC := testutil.NewPostgresContainer(ctx, t)

	// Start RustFS container
	s3C := testutil.NewRustFSContainer(ctx, t)

	// Create connection pool and run migrations
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	// Create S3 client
	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-documents",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	// Find free port for server
	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	// Start HTTP server
	serverURL, serverCloser := startServer(t, pool, s3Client, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// fakeModelClient stands in for the OpenAI client so E2E runs need no
// API key. Embeddings are deterministic bag-of-words vectors, so texts
// sharing vocabulary land close together in cosine space. Completions
// and streams return fixed answers.
type fakeModelClient struct {
	answer string
}

func (c *fakeModelClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embedText(text)
	}
	return out, nil
}

func (c *fakeModelClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	return prompt, nil
}

func (c *fakeModelClient) Stream(ctx context.Context, system string, messages []domain.Message) (<-chan domain.StreamEvent, error) {
	events := make(chan domain.StreamEvent)
	go func() {
		defer close(events)
		for _, token := range strings.SplitAfter(c.answer, " ") {
			select {
			case events <- domain.StreamEvent{Token: token}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func embedText(text string) []float32 {
	v := make([]float32, openai.DefaultEmbeddingDimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%uint32(len(v))]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		v[0] = 1
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// startServer starts the HTTP server with the full service stack wired
// to the fake model client
func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, port int) (string, func()) {
	chunkRepo := repository.NewChunkRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)

	model := &fakeModelClient{answer: "The vacation policy allows twenty days."}

	ingestSvc := service.NewIngestService(model, chunkRepo)
	retriever := service.NewRetriever(chunkRepo, service.DefaultTopK)
	generator := service.NewRAGGenerator(
		service.NewChatGenerator(model, ""),
		service.NewRuleClassifier(),
		model,
		retriever,
	)

	chatSvc := service.NewChatService(generator, conversationRepo)
	documentSvc := service.NewDocumentService(s3Client, ingestSvc)

	cfg := server.RouterConfig{
		AuthValidator: service.NewStaticTokenValidator(map[string]string{testToken: testUser}),
		ChatHandler:   handlers.NewChatHandler(chatSvc),
		FilesHandler:  handlers.NewFilesHandler(documentSvc),
	}

	router := server.NewRouter(cfg)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to start
	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("server did not start in time")
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path, authToken string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// UploadDocument uploads raw file content through the upload endpoint
func (e *E2ETestEnv) UploadDocument(filename string, content []byte, authToken string) (*APIResponse, error) {
	url := e.ServerURL + "/files/upload?filename=" + filename

	req, err := http.NewRequest("POST", url, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}
	return &apiResp, nil
}

// SSEEvent is one parsed server-sent event
type SSEEvent struct {
	Event string
	Data  string
}

// StreamChat posts a chat turn and reads the whole SSE stream
func (e *E2ETestEnv) StreamChat(body interface{}, authToken string) ([]SSEEvent, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", e.ServerURL+"/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, raw)
	}

	var events []SSEEvent
	var current SSEEvent
	for _, line := range strings.Split(string(raw), "\n") {
		switch {
		case strings.HasPrefix(line, "event: "):
			current.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.Data = strings.TrimPrefix(line, "data: ")
		case line == "" && current.Event != "":
			events = append(events, current)
			current = SSEEvent{}
		}
	}
	return events, nil
}
