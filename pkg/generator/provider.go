package generator

import (
	"context"
	"fmt"
)

// Provider sends a (user context, message) pair to a text-generation
// backend and returns the generated reply. Implementations make exactly
// one attempt per call; retry policy belongs to the caller.
type Provider interface {
	Generate(ctx context.Context, userContext string, message string) (string, error)
}

// Error kinds. All three are externally equivalent: the caller masks the
// failure with a fixed fallback reply and notifies the user once.
const (
	KindTransport = "transport"
	KindStatus    = "status"
	KindShape     = "shape"
)

// GenerationError wraps any failure from the generation endpoint.
type GenerationError struct {
	Kind       string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("generation failed (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
