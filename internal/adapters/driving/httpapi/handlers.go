package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
)

// maxUploadBytes caps PDF uploads. Bylaws documents are text-heavy
// PDFs; 50 MB is generous.
const maxUploadBytes = 50 << 20

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type uploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Warning  string `json:"warning,omitempty"`
}

type submitResponse struct {
	RequestID   string    `json:"request_id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (s *Server) handleRoot(c echo.Context) error {
	version := s.opts.Version
	if version == "" {
		version = "dev"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "HOA Bylaws Assistant API",
		"version": version,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":          "healthy",
		"rag_initialized": s.answers.Ready(),
		"llm_provider":    s.opts.LLMProvider,
		"model":           s.opts.LLMModel,
		"has_documents":   s.answers.Ready(),
	})
}

func (s *Server) handleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, domain.ErrValidation)
	}

	answer, err := s.answers.Ask(c.Request().Context(), req.Question)
	if err != nil {
		return errorResponse(c, err)
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return c.JSON(http.StatusOK, askResponse{
		Answer:  answer.Text,
		Sources: sources,
	})
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, domain.ErrValidation)
	}
	if fh.Size > maxUploadBytes {
		return errorResponse(c, domain.ErrValidation)
	}

	f, err := fh.Open()
	if err != nil {
		return errorResponse(c, err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return errorResponse(c, err)
	}
	if len(content) > maxUploadBytes {
		return errorResponse(c, domain.ErrValidation)
	}

	res, err := s.ingestion.IngestPDF(c.Request().Context(), fh.Filename, content)
	if err != nil {
		return errorResponse(c, err)
	}

	msg := "Bylaws uploaded and indexed successfully"
	if res.Warning != "" {
		msg = "Bylaws uploaded"
	}
	return c.JSON(http.StatusOK, uploadResponse{
		Message:  msg,
		Filename: res.Filename,
		Chunks:   res.Chunks,
		Warning:  res.Warning,
	})
}

func (s *Server) handleSubmitRequest(c echo.Context) error {
	var req domain.ModificationRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, domain.ErrValidation)
	}

	saved, err := s.requests.Submit(c.Request().Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, submitResponse{
		RequestID:   saved.RequestID,
		Status:      saved.Status,
		SubmittedAt: saved.SubmittedAt,
	})
}

func (s *Server) handleTestLLM(c echo.Context) error {
	resp, err := s.answers.TestLLM(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":        "ok",
		"message":       "LLM provider responded",
		"test_response": resp,
	})
}
