package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/888Greys/rag-ai/internal/domain"
	"github.com/888Greys/rag-ai/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, owner, filename string, content []byte) (int, error) {
	args := m.Called(ctx, owner, filename, content)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentService) UploadShared(ctx context.Context, filename string, content []byte) (int, error) {
	args := m.Called(ctx, filename, content)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, owner string) ([]service.DocumentFile, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentFile), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, owner, path string) error {
	args := m.Called(ctx, owner, path)
	return args.Error(0)
}

func TestFilesHandler_Upload(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Upload", mock.Anything, "alice@example.com", "notes.txt", []byte("file body")).
		Return(2, nil)

	handler := NewFilesHandler(svc)

	req := authedRequest(http.MethodPost, "/files/upload?filename=notes.txt", "file body")
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data UploadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com/notes.txt", resp.Data.Path)
	assert.Equal(t, 2, resp.Data.Chunks)
	svc.AssertExpectations(t)
}

func TestFilesHandler_Upload_MissingFilename(t *testing.T) {
	handler := NewFilesHandler(new(MockDocumentService))

	req := authedRequest(http.MethodPost, "/files/upload", "body")
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilesHandler_Upload_EmptyDocument(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0, domain.ErrEmptyDocument)

	handler := NewFilesHandler(svc)

	req := authedRequest(http.MethodPost, "/files/upload?filename=blank.txt", "   ")
	w := httptest.NewRecorder()

	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilesHandler_UploadText(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("UploadShared", mock.Anything, "faq.txt", []byte("shared body")).
		Return(1, nil)

	handler := NewFilesHandler(svc)

	req := authedRequest(http.MethodPost, "/files/upload-text",
		`{"filename":"faq.txt","content":"shared body"}`)
	w := httptest.NewRecorder()

	handler.UploadText(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"pathname":"shared/faq.txt"`)
	svc.AssertExpectations(t)
}

func TestFilesHandler_List(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("List", mock.Anything, "alice@example.com").Return([]service.DocumentFile{
		{Path: "alice@example.com/mine.txt", DownloadURL: "https://example.com/signed"},
		{Path: "shared/handbook.txt"},
	}, nil)

	handler := NewFilesHandler(svc)

	req := authedRequest(http.MethodGet, "/files/list", "")
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []service.DocumentFile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "alice@example.com/mine.txt", resp.Data[0].Path)
}

func TestFilesHandler_List_Empty(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("List", mock.Anything, "alice@example.com").Return([]service.DocumentFile(nil), nil)

	handler := NewFilesHandler(svc)

	req := authedRequest(http.MethodGet, "/files/list", "")
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestFilesHandler_Delete(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Delete", mock.Anything, "alice@example.com", "alice@example.com/old.txt").Return(nil)

	handler := NewFilesHandler(svc)

	req := authedRequest(http.MethodDelete, "/files/delete?path=alice%40example.com%2Fold.txt", "")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestFilesHandler_Delete_ForeignPath(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Delete", mock.Anything, "alice@example.com", "bob@example.com/x.txt").
		Return(domain.ErrPathNotOwned)

	handler := NewFilesHandler(svc)

	req := authedRequest(http.MethodDelete, "/files/delete?path=bob%40example.com%2Fx.txt", "")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFilesHandler_Unauthenticated(t *testing.T) {
	handler := NewFilesHandler(new(MockDocumentService))

	for _, fn := range []http.HandlerFunc{handler.Upload, handler.UploadText, handler.List, handler.Delete} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		fn(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}
