package llm

import (
	"context"
	"errors"
)

// Client is the capability boundary to the external text-generation service.
// It returns raw model text; structured extraction is the caller's problem
// (see util/jsonutil). Implementations perform exactly one network call per
// Generate; retry policy is composed via Middleware.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	Close() error
}

// Options are the sampling parameters a stage passes through to the service.
type Options struct {
	MaxTokens   int
	Temperature float32
}

var (
	// ErrUnavailable marks transport failures and non-success statuses from
	// the generation service.
	ErrUnavailable = errors.New("llm: generation service unavailable")
	// ErrTimeout marks a missed caller-supplied deadline.
	ErrTimeout = errors.New("llm: generation timed out")
	// ErrEmptyResponse marks a success status with no usable candidate text.
	ErrEmptyResponse = errors.New("llm: empty response from generation service")
)

// PermanentError indicates an error that will not resolve with retries
// (bad credentials, invalid request). Retry middleware short-circuits on it.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

type ctxKeyStage struct{}

// WithStage tags the context with the pipeline stage issuing the request.
// Clients use it for logging; the fake client uses it to pick a fixture.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxKeyStage{}, stage)
}

// StageFrom returns the stage tag stored in the context.
func StageFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyStage{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
