// Package invoice defines the contract with the external AI invoice
// extractor: a data-URI encoded image in, a pre-fill suggestion out. The
// engine never appends the suggestion itself; a user confirms it and the
// caller records the resulting expense through the normal authorized path.
package invoice

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// ImageData is a decoded invoice image.
type ImageData struct {
	MIMEType string
	Data     []byte
}

// Suggestion is the extractor's output: pre-fill values for an expense form.
type Suggestion struct {
	Amount      float64                `json:"amount"`
	Date        string                 `json:"date"`
	Category    ledger.ExpenseCategory `json:"category"`
	Description string                 `json:"description"`
}

// Extractor analyzes an invoice image. Implementations are external
// collaborators (an AI service); the engine only validates their output.
type Extractor interface {
	Analyze(ctx context.Context, img ImageData) (Suggestion, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, img ImageData) (Suggestion, error)

// Analyze implements Extractor.
func (f ExtractorFunc) Analyze(ctx context.Context, img ImageData) (Suggestion, error) {
	return f(ctx, img)
}

// ParseDataURI decodes a self-describing data URI of the form
// "data:<mimetype>;base64,<encoded_data>".
func ParseDataURI(uri string) (ImageData, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ImageData{}, fmt.Errorf("not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return ImageData{}, fmt.Errorf("data URI has no payload")
	}

	mimeType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return ImageData{}, fmt.Errorf("data URI must be base64 encoded")
	}
	if mimeType == "" {
		return ImageData{}, fmt.Errorf("data URI has no MIME type")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode data URI payload: %w", err)
	}
	return ImageData{MIMEType: mimeType, Data: data}, nil
}

// ValidateSuggestion checks an extractor result against the expense event
// shape before it is shown to the user.
func ValidateSuggestion(s Suggestion) error {
	if s.Amount <= 0 {
		return &ledger.ValidationError{Field: "amount", Reason: ledger.ErrInvalidAmount}
	}
	if err := ledger.ValidateDate(s.Date); err != nil {
		return err
	}
	if !s.Category.IsValid() {
		return &ledger.ValidationError{Field: "category", Reason: ledger.ErrInvalidCategory}
	}
	return nil
}

// ExpenseEvent turns a confirmed suggestion into a draft expense event for
// the given branch, ready for the authorized append path.
func (s Suggestion) ExpenseEvent(branchID string) ledger.Event {
	return ledger.Event{
		Kind:        ledger.KindExpense,
		Amount:      s.Amount,
		Date:        s.Date,
		Category:    s.Category,
		Description: s.Description,
		BranchID:    branchID,
	}
}
