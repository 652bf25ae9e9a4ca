package generator

import (
	"context"
	"errors"
	"fmt"
)

// Provider is a text generation backend.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	// JSON asks the backend for a bare JSON reply where it supports that.
	JSON bool
}

type Response struct {
	Text  string
	Model string
}

// ErrProviderUnavailable covers transport failures, 5xx replies and missing
// configuration.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "generation provider unavailable"
	}
	return fmt.Sprintf("generation provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

type ErrRateLimit struct {
	Err error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("generation provider rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the provider answered but the reply was unusable.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid generation response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

var ErrNoProvider = errors.New("no generation provider configured")

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string, fallback string) string {
	if name == "" {
		return fallback
	}
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
