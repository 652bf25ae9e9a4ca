package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"gorm.io/gorm"
)

// AllModels lists every table owned by the service, parents before children.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.PersonalityQuestion{},
		&models.PersonalityOption{},
		&models.PersonalityResult{},
		&models.LearningModule{},
		&models.ModuleTest{},
		&models.ModuleTestAttempt{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedPersonalityQuestions inserts the default question bank when the table is
// empty. It returns the number of questions inserted.
func SeedPersonalityQuestions(ctx context.Context, db *gorm.DB) (int, error) {
	repo := NewPersonalityPostgreSQL(db)

	count, err := repo.CountQuestions(ctx, nil)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	questions := DefaultPersonalityQuestions()
	if err := repo.CreateQuestions(ctx, nil, questions); err != nil {
		return 0, fmt.Errorf("seed personality questions: %w", err)
	}
	return len(questions), nil
}

// DefaultPersonalityQuestions returns eight questions whose option scores run
// from 2 to 10, so totals span 16 to 80 and reach every learning level band.
func DefaultPersonalityQuestions() []*models.PersonalityQuestion {
	type seed struct {
		text    string
		options [4]string
	}
	seeds := []seed{
		{"When you meet a new concept, how quickly do you usually grasp it?",
			[4]string{"I need it explained several times", "After a couple of examples", "After one good example", "Almost immediately"}},
		{"How comfortable are you learning on your own without guidance?",
			[4]string{"Not comfortable", "Somewhat comfortable", "Comfortable", "Very comfortable"}},
		{"How many hours per week can you dedicate to study?",
			[4]string{"Less than 2", "2 to 5", "5 to 10", "More than 10"}},
		{"How do you react when an exercise is harder than expected?",
			[4]string{"I usually give up", "I look for the answer", "I try a few approaches", "I enjoy the challenge"}},
		{"How much prior experience do you have with programming?",
			[4]string{"None", "A little", "Some projects", "Professional experience"}},
		{"How often do you review material after learning it?",
			[4]string{"Rarely", "Before exams only", "Weekly", "Regularly and on purpose"}},
		{"How confident are you explaining what you learned to someone else?",
			[4]string{"Not confident", "Slightly confident", "Confident", "Very confident"}},
		{"How do you prefer to be tested on new material?",
			[4]string{"I avoid tests", "Short guided quizzes", "Mixed quizzes", "Hard challenges"}},
	}

	scores := [4]int{2, 5, 8, 10}
	questions := make([]*models.PersonalityQuestion, 0, len(seeds))
	for i, s := range seeds {
		q := &models.PersonalityQuestion{Text: s.text, Order: i + 1}
		for j, text := range s.options {
			q.Options = append(q.Options, models.PersonalityOption{Text: text, Score: scores[j]})
		}
		questions = append(questions, q)
	}
	return questions
}
