package checker

import (
	"context"
	"errors"
)

// ErrQuotaExhausted marks errors the remote service raised because the
// caller's request quota or rate limit was exceeded (HTTP 429).
var ErrQuotaExhausted = errors.New("quota exhausted")

// Model is one model descriptor returned by the enumeration call.
type Model struct {
	Name        string
	DisplayName string
}

// ModelIterator yields model descriptors once. Next returns
// iterator.Done when the sequence is exhausted.
type ModelIterator interface {
	Next() (*Model, error)
}

// Service abstracts the remote generative-language API.
type Service interface {
	ListModels(ctx context.Context) ModelIterator
	// Generate submits prompt to model and blocks until the full response
	// text is available. Quota failures must wrap ErrQuotaExhausted.
	Generate(ctx context.Context, model, prompt string) (string, error)
}
