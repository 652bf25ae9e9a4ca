package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var quizSchemaDefinition = map[string]any{
	"type":     "array",
	"minItems": models.QuizQuestionCount,
	"maxItems": models.QuizQuestionCount,
	"items": map[string]any{
		"type":     "object",
		"required": []any{"id", "question", "options", "correct_answer"},
		"properties": map[string]any{
			"id":       map[string]any{"type": "integer", "minimum": 1},
			"question": map[string]any{"type": "string", "minLength": 1},
			"options": map[string]any{
				"type":     "object",
				"required": []any{"A", "B", "C", "D"},
				"properties": map[string]any{
					"A": map[string]any{"type": "string", "minLength": 1},
					"B": map[string]any{"type": "string", "minLength": 1},
					"C": map[string]any{"type": "string", "minLength": 1},
					"D": map[string]any{"type": "string", "minLength": 1},
				},
			},
			"correct_answer": map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D"}},
		},
	},
}

var (
	quizSchemaOnce sync.Once
	quizSchema     *jsonschema.Schema
	quizSchemaErr  error

	fencePrefix = regexp.MustCompile("^```(?:json)?\\s*")
	fenceSuffix = regexp.MustCompile("\\s*```$")
)

func compiledQuizSchema() (*jsonschema.Schema, error) {
	quizSchemaOnce.Do(func() {
		// The compiler wants a decoded JSON value, not Go maps with typed ints.
		raw, err := json.Marshal(quizSchemaDefinition)
		if err != nil {
			quizSchemaErr = err
			return
		}
		var def any
		if err := json.Unmarshal(raw, &def); err != nil {
			quizSchemaErr = err
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://quiz.json", def); err != nil {
			quizSchemaErr = err
			return
		}
		quizSchema, quizSchemaErr = c.Compile("schema://quiz.json")
	})
	return quizSchema, quizSchemaErr
}

// StripCodeFences removes a surrounding markdown code block, if any.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = fencePrefix.ReplaceAllString(text, "")
	text = fenceSuffix.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ParseQuiz turns a model reply into exactly five well-formed questions. It
// accepts either a bare array or an object with a "questions" array.
func ParseQuiz(text string) ([]models.QuizQuestion, error) {
	body := StripCodeFences(text)

	var parsed any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: body, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if obj, ok := parsed.(map[string]any); ok {
		if inner, ok := obj["questions"]; ok {
			parsed = inner
		}
	}

	schema, err := compiledQuizSchema()
	if err != nil {
		return nil, fmt.Errorf("compile quiz schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: body, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	normalized, err := json.Marshal(parsed)
	if err != nil {
		return nil, err
	}
	var questions []models.QuizQuestion
	if err := json.Unmarshal(normalized, &questions); err != nil {
		return nil, &ErrInvalidResponse{Content: body, Err: err}
	}

	seen := make(map[int]bool, len(questions))
	for _, q := range questions {
		if seen[q.ID] {
			return nil, &ErrInvalidResponse{Content: body, Err: fmt.Errorf("duplicate question id %d", q.ID)}
		}
		seen[q.ID] = true
	}

	return questions, nil
}
