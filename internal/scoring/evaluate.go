package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	apperrors "github.com/SAP-F-2025/learning-service/internal/errors"
	"github.com/SAP-F-2025/learning-service/internal/models"
)

var ErrEmptyTest = errors.New("test has no questions")

type QuestionResult struct {
	QuestionID int    `json:"question_id"`
	Submitted  string `json:"submitted,omitempty"`
	Correct    bool   `json:"correct"`
}

type Evaluation struct {
	Score int `json:"score"`
	Total int `json:"total"`
	// Percentage keeps full precision; round only for display.
	Percentage float64          `json:"percentage"`
	Results    []QuestionResult `json:"results"`
}

// EvaluateTest grades submitted labels against the questions' correct answers.
// Questions without a submitted answer count as incorrect. Malformed entries are
// reported together as ValidationErrors and nothing is scored.
func EvaluateTest(questions []models.QuizQuestion, answers []models.TestAnswer) (*Evaluation, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyTest
	}
	if len(answers) == 0 {
		return nil, apperrors.Single("answers", "must not be empty", nil)
	}

	known := make(map[int]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	var errs apperrors.ValidationErrors
	submitted := make(map[int]string, len(answers))
	for i, a := range answers {
		label := normalizeLabel(a.Answer)
		switch {
		case a.QuestionID == 0:
			errs = append(errs, *apperrors.NewValidationError(fmt.Sprintf("answers[%d].question_id", i), "is required", nil))
		case label == "":
			errs = append(errs, *apperrors.NewValidationError(fmt.Sprintf("answers[%d].answer", i), "is required", nil))
		case !IsOptionLabel(label):
			errs = append(errs, *apperrors.NewValidationError(fmt.Sprintf("answers[%d].answer", i), "must be one of: A, B, C, D", a.Answer))
		case !known[a.QuestionID]:
			errs = append(errs, *apperrors.NewValidationError(fmt.Sprintf("answers[%d].question_id", i), "does not belong to this test", a.QuestionID))
		default:
			if _, dup := submitted[a.QuestionID]; dup {
				errs = append(errs, *apperrors.NewValidationError(fmt.Sprintf("answers[%d].question_id", i), "is answered more than once", a.QuestionID))
				continue
			}
			submitted[a.QuestionID] = label
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	eval := &Evaluation{
		Total:   len(questions),
		Results: make([]QuestionResult, 0, len(questions)),
	}
	for _, q := range questions {
		label := submitted[q.ID]
		correct := label != "" && label == normalizeLabel(q.CorrectAnswer)
		if correct {
			eval.Score++
		}
		eval.Results = append(eval.Results, QuestionResult{
			QuestionID: q.ID,
			Submitted:  label,
			Correct:    correct,
		})
	}
	eval.Percentage = float64(eval.Score) / float64(eval.Total) * 100

	return eval, nil
}

// Passed compares at full precision.
func Passed(percentage, passPercentage float64) bool {
	return percentage >= passPercentage
}

// DisplayPercentage rounds to two decimals.
func DisplayPercentage(percentage float64) float64 {
	return math.Round(percentage*100) / 100
}

func IsOptionLabel(label string) bool {
	for _, l := range models.OptionLabels {
		if l == label {
			return true
		}
	}
	return false
}

func normalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
