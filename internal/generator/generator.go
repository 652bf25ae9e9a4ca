package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/metrics"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

const DefaultTimeout = 60 * time.Second

// Result is what every generation call returns: either the generated value or
// a deterministic fallback. Value is always usable; Cause says why the
// fallback was taken.
type Result[T any] struct {
	Value  T
	Source models.ContentSource
	Cause  error
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v, Source: models.SourceGenerated}
}

func fallback[T any](v T, cause error) Result[T] {
	return Result[T]{Value: v, Source: models.SourceFallback, Cause: cause}
}

func (r Result[T]) IsFallback() bool {
	return r.Source == models.SourceFallback
}

// ContentGenerator is what the lifecycle services depend on.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, topic string, difficulty models.Difficulty) Result[string]
	GenerateQuiz(ctx context.Context, topic string, difficulty models.Difficulty) Result[[]models.QuizQuestion]
	GenerateRoadmap(ctx context.Context, topic string) Result[string]
}

// Generator wraps a Provider with a per-call timeout and fallback content.
type Generator struct {
	provider Provider
	timeout  time.Duration
	logger   utils.Logger
}

// NewGenerator accepts a nil provider, in which case every call falls back.
func NewGenerator(provider Provider, timeout time.Duration, logger utils.Logger) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

func (g *Generator) GenerateContent(ctx context.Context, topic string, difficulty models.Difficulty) Result[string] {
	text, err := g.call(ctx, Request{
		System: tutorSystemPrompt,
		Prompt: contentPrompt(topic, difficulty),
	})
	if err != nil {
		g.recordFallback(ctx, "content", topic, err)
		return fallback(FallbackContent(topic, difficulty), err)
	}
	metrics.RecordGeneration("content", string(models.SourceGenerated))
	return ok(text)
}

func (g *Generator) GenerateQuiz(ctx context.Context, topic string, difficulty models.Difficulty) Result[[]models.QuizQuestion] {
	text, err := g.call(ctx, Request{
		System:      tutorSystemPrompt,
		Prompt:      quizPrompt(topic, difficulty),
		Temperature: 0.7,
		JSON:        true,
	})
	if err == nil {
		var questions []models.QuizQuestion
		questions, err = ParseQuiz(text)
		if err == nil {
			metrics.RecordGeneration("quiz", string(models.SourceGenerated))
			return ok(questions)
		}
	}

	g.recordFallback(ctx, "quiz", topic, err)
	return fallback(FallbackQuiz(topic), err)
}

func (g *Generator) GenerateRoadmap(ctx context.Context, topic string) Result[string] {
	text, err := g.call(ctx, Request{
		System: tutorSystemPrompt,
		Prompt: roadmapPrompt(topic),
	})
	if err != nil {
		g.recordFallback(ctx, "roadmap", topic, err)
		return fallback(FallbackRoadmap(topic), err)
	}
	metrics.RecordGeneration("roadmap", string(models.SourceGenerated))
	return ok(text)
}

// call bounds the provider with the configured timeout and turns a panic in
// the SDK into an error.
func (g *Generator) call(ctx context.Context, req Request) (text string, err error) {
	if g.provider == nil {
		return "", ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = &ErrProviderUnavailable{Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Text == "" {
		return "", &ErrInvalidResponse{Err: fmt.Errorf("empty response")}
	}
	return resp.Text, nil
}

func (g *Generator) recordFallback(ctx context.Context, kind, topic string, cause error) {
	metrics.RecordGeneration(kind, string(models.SourceFallback))
	model := "none"
	if g.provider != nil {
		model = g.provider.ModelID()
	}
	g.logger.WarnContext(ctx, "Content generation failed, serving fallback",
		"kind", kind,
		"topic", topic,
		"model", model,
		"error", cause)
}
