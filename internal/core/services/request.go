package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driving"
	"github.com/hoalabs/bylaws-assistant/internal/logger"
)

var _ driving.RequestService = (*RequestService)(nil)

// RequestService accepts homeowner modification requests and persists
// them as immutable records.
type RequestService struct {
	store driven.RequestStore
}

// NewRequestService wires the request store.
func NewRequestService(store driven.RequestStore) *RequestService {
	return &RequestService{store: store}
}

// Submit validates the request, stamps it with a generated request ID,
// the submitted status and the submission time, and persists it.
func (s *RequestService) Submit(ctx context.Context, req *domain.ModificationRequest) (*domain.ModificationRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	req.RequestID = newRequestID()
	req.Status = domain.StatusSubmitted
	req.SubmittedAt = time.Now().UTC()

	if err := s.store.Save(ctx, req); err != nil {
		return nil, fmt.Errorf("saving request: %w", err)
	}

	logger.Info("Recorded modification request %s (%s)", req.RequestID, req.ChangeType)
	return req, nil
}

// newRequestID builds an ID that sorts by submission time and stays
// unique under concurrent submissions within the same second.
func newRequestID() string {
	ts := time.Now().UTC().Format("20060102150405")
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("REQ-%s-%s", ts, suffix)
}
