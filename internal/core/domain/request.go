package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ChangeTypes lists the accepted modification categories.
var ChangeTypes = []string{
	"Exterior Painting",
	"Landscaping",
	"Fence Installation",
	"Solar Panels",
	"Roof Replacement",
	"Deck/Patio Addition",
	"Window Replacement",
	"Other",
}

// Urgency levels for a modification request.
const (
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

// StatusSubmitted is the only status a request ever has. There is no
// approval workflow; the store is a fire-and-forget ledger.
const StatusSubmitted = "submitted"

// ModificationRequest is a homeowner's request to modify their
// property. Records are immutable once submitted.
type ModificationRequest struct {
	RequestID     string    `json:"request_id"`
	HomeownerName string    `json:"homeowner_name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	ChangeType    string    `json:"change_type"`
	Description   string    `json:"description"`
	Urgency       string    `json:"urgency"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Validate checks the request fields ahead of submission. An empty
// urgency is filled in with UrgencyNormal. All failures wrap
// ErrValidation.
func (r *ModificationRequest) Validate() error {
	r.HomeownerName = strings.TrimSpace(r.HomeownerName)
	r.Email = strings.TrimSpace(r.Email)
	r.Address = strings.TrimSpace(r.Address)
	r.ChangeType = strings.TrimSpace(r.ChangeType)
	r.Description = strings.TrimSpace(r.Description)
	r.Urgency = strings.TrimSpace(strings.ToLower(r.Urgency))

	switch {
	case r.HomeownerName == "":
		return fmt.Errorf("%w: homeowner_name is required", ErrValidation)
	case r.Email == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case r.Address == "":
		return fmt.Errorf("%w: address is required", ErrValidation)
	case r.ChangeType == "":
		return fmt.Errorf("%w: change_type is required", ErrValidation)
	case r.Description == "":
		return fmt.Errorf("%w: description is required", ErrValidation)
	}

	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: invalid email address %q", ErrValidation, r.Email)
	}

	if !validChangeType(r.ChangeType) {
		return fmt.Errorf("%w: unknown change_type %q", ErrValidation, r.ChangeType)
	}

	switch r.Urgency {
	case "":
		r.Urgency = UrgencyNormal
	case UrgencyNormal, UrgencyHigh, UrgencyUrgent:
	default:
		return fmt.Errorf("%w: unknown urgency %q", ErrValidation, r.Urgency)
	}

	return nil
}

func validChangeType(ct string) bool {
	for _, t := range ChangeTypes {
		if t == ct {
			return true
		}
	}
	return false
}
