package scoring

import (
	"fmt"

	apperrors "github.com/SAP-F-2025/learning-service/internal/errors"
	"github.com/SAP-F-2025/learning-service/internal/models"
)

// AssessmentAnswer picks one option for one personality question.
type AssessmentAnswer struct {
	QuestionID uint `json:"question_id"`
	OptionID   uint `json:"option_id"`
}

// OptionIDs lists the non-zero option ids referenced by answers.
func OptionIDs(answers []AssessmentAnswer) []uint {
	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		if a.OptionID != 0 {
			ids = append(ids, a.OptionID)
		}
	}
	return ids
}

// ScoreAssessment sums the scores of the chosen options. options must contain
// every option referenced by answers; anything missing, mismatched or repeated
// is rejected rather than skipped.
func ScoreAssessment(answers []AssessmentAnswer, options map[uint]models.PersonalityOption) (int, error) {
	if len(answers) == 0 {
		return 0, apperrors.Single("answers", "must not be empty", nil)
	}

	var errs apperrors.ValidationErrors
	seen := make(map[uint]bool, len(answers))
	total := 0
	for i, a := range answers {
		switch {
		case a.QuestionID == 0:
			errs = append(errs, *apperrors.NewValidationError(fmt.Sprintf("answers[%d].question_id", i), "is required", nil))
			continue
		case a.OptionID == 0:
			errs = append(errs, *apperrors.NewValidationError(fmt.Sprintf("answers[%d].option_id", i), "is required", nil))
			continue
		case seen[a.QuestionID]:
			errs = append(errs, *apperrors.NewValidationError(fmt.Sprintf("answers[%d].question_id", i), "is answered more than once", a.QuestionID))
			continue
		}
		seen[a.QuestionID] = true

		opt, ok := options[a.OptionID]
		if !ok || opt.QuestionID != a.QuestionID {
			errs = append(errs, *apperrors.NewValidationError(fmt.Sprintf("answers[%d].option_id", i), "does not belong to the question", a.OptionID))
			continue
		}
		total += opt.Score
	}
	if len(errs) > 0 {
		return 0, errs
	}
	return total, nil
}
