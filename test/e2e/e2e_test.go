//go:build e2e

package e2e

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/888Greys/rag-ai/internal/domain"
)

func TestE2E_AuthRequired(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	_, err := env.Get("/files/list", "")
	if err == nil {
		t.Fatal("expected unauthenticated request to fail")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401, got: %v", err)
	}

	_, err = env.Get("/files/list", "wrong-token")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 for bad token, got: %v", err)
	}
}

func TestE2E_DocumentLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	content := []byte("Employees accrue twenty vacation days per year. Unused days roll over.")
	if _, err := env.UploadDocument("vacation.txt", content, testToken); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	// Uploaded file shows up in the listing under the owner's namespace
	listResp, err := env.Get("/files/list", testToken)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var files []struct {
		Pathname string `json:"pathname"`
		URL      string `json:"url"`
	}
	if err := json.Unmarshal(listResp.Data, &files); err != nil {
		t.Fatalf("failed to parse file list: %v", err)
	}
	path := testUser + "/vacation.txt"
	found := false
	for _, f := range files {
		if f.Pathname == path {
			found = true
			if f.URL == "" {
				t.Error("expected a download URL for listed file")
			}
		}
	}
	if !found {
		t.Fatalf("uploaded file %s not in listing: %+v", path, files)
	}

	// Chunks landed in the store
	var chunkCount int
	if err := env.Pool.QueryRow(env.Ctx, "SELECT count(*) FROM chunks WHERE path = $1", path).Scan(&chunkCount); err != nil {
		t.Fatalf("failed to count chunks: %v", err)
	}
	if chunkCount == 0 {
		t.Fatal("expected chunks after upload")
	}

	// Delete removes blob and chunks
	if _, err := env.Delete("/files/delete?path="+path, testToken); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := env.Pool.QueryRow(env.Ctx, "SELECT count(*) FROM chunks WHERE path = $1", path).Scan(&chunkCount); err != nil {
		t.Fatalf("failed to count chunks: %v", err)
	}
	if chunkCount != 0 {
		t.Fatalf("expected 0 chunks after delete, got %d", chunkCount)
	}
}

func TestE2E_SharedUpload(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	_, err := env.Post("/files/upload-text", map[string]string{
		"filename": "handbook.txt",
		"content":  "The company handbook covers expenses and travel booking.",
	}, testToken)
	if err != nil {
		t.Fatalf("shared upload failed: %v", err)
	}

	var chunkCount int
	if err := env.Pool.QueryRow(env.Ctx, "SELECT count(*) FROM chunks WHERE path = $1", "shared/handbook.txt").Scan(&chunkCount); err != nil {
		t.Fatalf("failed to count chunks: %v", err)
	}
	if chunkCount == 0 {
		t.Fatal("expected chunks under shared namespace")
	}
}

func TestE2E_ChatFlow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	content := []byte("Employees accrue twenty vacation days per year. Unused vacation days roll over to the next year.")
	if _, err := env.UploadDocument("vacation.txt", content, testToken); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	events, err := env.StreamChat(map[string]interface{}{
		"id": "conv-e2e-1",
		"messages": []map[string]string{
			{"role": "user", "content": "How many vacation days do employees accrue per year?"},
		},
		"selectedFilePathnames": []string{testUser + "/vacation.txt"},
	}, testToken)
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}

	if len(events) == 0 {
		t.Fatal("expected SSE events")
	}
	last := events[len(events)-1]
	if last.Event != "done" {
		t.Fatalf("expected final done event, got %q", last.Event)
	}

	var answer strings.Builder
	for _, ev := range events {
		if ev.Event != "token" {
			continue
		}
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			t.Fatalf("bad token payload %q: %v", ev.Data, err)
		}
		answer.WriteString(payload.Token)
	}
	if !strings.Contains(answer.String(), "twenty") {
		t.Fatalf("unexpected streamed answer: %q", answer.String())
	}

	// The finished conversation is persisted with the assistant's turn
	resp, err := env.Get("/chats/conv-e2e-1", testToken)
	if err != nil {
		t.Fatalf("get conversation failed: %v", err)
	}
	var conv struct {
		ID       string           `json:"id"`
		Messages []domain.Message `json:"messages"`
	}
	if err := json.Unmarshal(resp.Data, &conv); err != nil {
		t.Fatalf("failed to parse conversation: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
	if conv.Messages[1].Role != domain.RoleAssistant {
		t.Fatalf("expected assistant reply, got role %q", conv.Messages[1].Role)
	}
	if !strings.Contains(conv.Messages[1].Content, "twenty") {
		t.Fatalf("persisted answer mismatch: %q", conv.Messages[1].Content)
	}

	// Conversation shows up in the author's listing
	listResp, err := env.Get("/chats/", testToken)
	if err != nil {
		t.Fatalf("list conversations failed: %v", err)
	}
	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(listResp.Data, &page); err != nil {
		t.Fatalf("failed to parse conversation list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "conv-e2e-1" {
		t.Fatalf("unexpected conversation list: %+v", page.Items)
	}
}

func TestE2E_ChatRejectsForeignPath(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	_, err := env.StreamChat(map[string]interface{}{
		"id": "conv-e2e-2",
		"messages": []map[string]string{
			{"role": "user", "content": "What does the other user's file say?"},
		},
		"selectedFilePathnames": []string{"someone-else@example.com/secret.txt"},
	}, testToken)
	if err == nil {
		t.Fatal("expected foreign path selection to be rejected")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401, got: %v", err)
	}
}
