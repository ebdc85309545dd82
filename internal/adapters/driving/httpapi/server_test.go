package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driving"
)

// stubIngestion implements driving.IngestionService.
type stubIngestion struct {
	result       *driving.IngestResult
	err          error
	lastFilename string
	lastContent  []byte
}

func (s *stubIngestion) IngestPDF(_ context.Context, filename string, content []byte) (*driving.IngestResult, error) {
	s.lastFilename = filename
	s.lastContent = content
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubIngestion) IngestFile(context.Context, string) (*driving.IngestResult, error) {
	return s.result, s.err
}

// stubAnswers implements driving.AnswerService.
type stubAnswers struct {
	answer       *domain.Answer
	testResponse string
	err          error
	ready        bool
	lastQuestion string
}

func (s *stubAnswers) Ask(_ context.Context, question string) (*domain.Answer, error) {
	s.lastQuestion = question
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func (s *stubAnswers) TestLLM(context.Context) (string, error) {
	return s.testResponse, s.err
}

func (s *stubAnswers) Ready() bool { return s.ready }

// stubRequests implements driving.RequestService.
type stubRequests struct {
	err  error
	last *domain.ModificationRequest
}

func (s *stubRequests) Submit(_ context.Context, req *domain.ModificationRequest) (*domain.ModificationRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	req.RequestID = "REQ-20260831120000-abcd1234"
	req.Status = domain.StatusSubmitted
	req.SubmittedAt = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s.last = req
	return req, nil
}

func newTestServer(ing *stubIngestion, ans *stubAnswers, reqs *stubRequests) *Server {
	if ing == nil {
		ing = &stubIngestion{}
	}
	if ans == nil {
		ans = &stubAnswers{}
	}
	if reqs == nil {
		reqs = &stubRequests{}
	}
	return New(ing, ans, reqs, Options{
		LLMProvider: "ollama",
		LLMModel:    "mistral",
		Version:     "1.0.0",
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRoot(t *testing.T) {
	srv := newTestServer(nil, nil, nil)
	rec := doJSON(t, srv, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "HOA Bylaws Assistant API", body["message"])
	assert.Equal(t, "1.0.0", body["version"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(nil, &stubAnswers{ready: true}, nil)
	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["rag_initialized"])
	assert.Equal(t, "ollama", body["llm_provider"])
	assert.Equal(t, "mistral", body["model"])
	assert.Equal(t, true, body["has_documents"])
}

func TestHealthBeforeIngestion(t *testing.T) {
	srv := newTestServer(nil, &stubAnswers{ready: false}, nil)
	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["rag_initialized"])
}

func TestAsk(t *testing.T) {
	ans := &stubAnswers{
		ready: true,
		answer: &domain.Answer{
			Text:    "Quiet hours begin at 10 PM.",
			Sources: []string{"bylaws.pdf (chunk 3)"},
		},
	}
	srv := newTestServer(nil, ans, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/ask", map[string]string{
		"question": "When do quiet hours begin?",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Quiet hours begin at 10 PM.", body["answer"])
	assert.Equal(t, []any{"bylaws.pdf (chunk 3)"}, body["sources"])
	assert.Equal(t, "When do quiet hours begin?", ans.lastQuestion)
}

func TestAskEmptySourcesIsArray(t *testing.T) {
	ans := &stubAnswers{ready: true, answer: &domain.Answer{Text: "I don't know."}}
	srv := newTestServer(nil, ans, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/ask", map[string]string{"question": "hm?"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sources":[]`)
}

func TestAskErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: question is required", domain.ErrValidation), http.StatusBadRequest},
		{"not ready", fmt.Errorf("%w: nothing indexed", domain.ErrNotReady), http.StatusServiceUnavailable},
		{"provider down", fmt.Errorf("%w: connection refused", domain.ErrProvider), http.StatusBadGateway},
		{"unexpected", fmt.Errorf("disk exploded"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(nil, &stubAnswers{err: tt.err}, nil)
			rec := doJSON(t, srv, http.MethodPost, "/api/ask", map[string]string{"question": "x"})

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func uploadPDF(t *testing.T, srv *Server, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-bylaws", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestUpload(t *testing.T) {
	ing := &stubIngestion{result: &driving.IngestResult{
		DocumentID: "doc-1",
		Filename:   "bylaws.pdf",
		Chunks:     12,
	}}
	srv := newTestServer(ing, nil, nil)

	rec := uploadPDF(t, srv, "file", "bylaws.pdf", []byte("%PDF-1.4 content"))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "bylaws.pdf", body["filename"])
	assert.Equal(t, float64(12), body["chunks"])
	assert.Equal(t, "bylaws.pdf", ing.lastFilename)
	assert.Equal(t, []byte("%PDF-1.4 content"), ing.lastContent)
}

func TestUploadEmptyExtractionWarning(t *testing.T) {
	ing := &stubIngestion{result: &driving.IngestResult{
		DocumentID: "doc-1",
		Filename:   "scanned.pdf",
		Warning:    "no extractable text found; the PDF may be scanned images",
	}}
	srv := newTestServer(ing, nil, nil)

	rec := uploadPDF(t, srv, "file", "scanned.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body["warning"], "no extractable text")
}

func TestUploadMissingFileField(t *testing.T) {
	srv := newTestServer(nil, nil, nil)
	rec := uploadPDF(t, srv, "wrong-field", "bylaws.pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectionsMapToStatus(t *testing.T) {
	ing := &stubIngestion{err: fmt.Errorf("%w: only PDF files are accepted", domain.ErrValidation)}
	srv := newTestServer(ing, nil, nil)

	rec := uploadPDF(t, srv, "file", "bylaws.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ing.err = fmt.Errorf("%w: pdftotext failed", domain.ErrIngestion)
	rec = uploadPDF(t, srv, "file", "bad.pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSubmitRequest(t *testing.T) {
	reqs := &stubRequests{}
	srv := newTestServer(nil, nil, reqs)

	rec := doJSON(t, srv, http.MethodPost, "/api/submit-request", map[string]string{
		"homeowner_name": "Jamie Alvarez",
		"email":          "jamie@example.com",
		"address":        "12 Birch Lane",
		"change_type":    "Solar Panels",
		"description":    "Install panels on the south-facing roof",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "REQ-20260831120000-abcd1234", body["request_id"])
	assert.Equal(t, "submitted", body["status"])
	assert.NotEmpty(t, body["submitted_at"])

	require.NotNil(t, reqs.last)
	assert.Equal(t, "Jamie Alvarez", reqs.last.HomeownerName)
	assert.Equal(t, "Solar Panels", reqs.last.ChangeType)
}

func TestSubmitRequestValidationError(t *testing.T) {
	reqs := &stubRequests{err: fmt.Errorf("%w: email is required", domain.ErrValidation)}
	srv := newTestServer(nil, nil, reqs)

	rec := doJSON(t, srv, http.MethodPost, "/api/submit-request", map[string]string{
		"homeowner_name": "Jamie",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body["detail"], "email is required")
}

func TestTestLLM(t *testing.T) {
	srv := newTestServer(nil, &stubAnswers{testResponse: "Hello"}, nil)
	rec := doJSON(t, srv, http.MethodGet, "/api/test-llm", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Hello", body["test_response"])
}

func TestTestLLMProviderDown(t *testing.T) {
	srv := newTestServer(nil, &stubAnswers{err: fmt.Errorf("%w: connection refused", domain.ErrProvider)}, nil)
	rec := doJSON(t, srv, http.MethodGet, "/api/test-llm", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/ask", strings.NewReader(""))
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
