package generator

import (
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// FallbackContent is served when module content cannot be generated.
func FallbackContent(topic string, difficulty models.Difficulty) string {
	return fmt.Sprintf(`# Learning Module: %[1]s

## Introduction
This is a %[2]s level module on %[1]s.

## Overview
Due to high demand, we couldn't generate custom content right now. Please try again in a few minutes.

## Key Concepts
- Core concepts of %[1]s
- Practical applications
- Best practices

Please refresh the page or try again later for AI-generated content.
`, topic, difficulty)
}

// FallbackQuiz always has QuizQuestionCount questions with answers A, B, C, B, C.
func FallbackQuiz(topic string) []models.QuizQuestion {
	return []models.QuizQuestion{
		{
			ID:       1,
			Question: fmt.Sprintf("What is a key concept in %s?", topic),
			Options: models.QuizOptions{
				A: "Understanding fundamentals",
				B: "Ignoring basics",
				C: "Skipping practice",
				D: "None of the above",
			},
			CorrectAnswer: "A",
		},
		{
			ID:       2,
			Question: fmt.Sprintf("Why is learning %s important?", topic),
			Options: models.QuizOptions{
				A: "It has no value",
				B: "Career advancement",
				C: "Time waste",
				D: "Not recommended",
			},
			CorrectAnswer: "B",
		},
		{
			ID:       3,
			Question: "What is the best approach to learning?",
			Options: models.QuizOptions{
				A: "Skip theory",
				B: "Only memorize",
				C: "Practice regularly",
				D: "Avoid examples",
			},
			CorrectAnswer: "C",
		},
		{
			ID:       4,
			Question: "How should you handle challenges?",
			Options: models.QuizOptions{
				A: "Give up quickly",
				B: "Persist and learn",
				C: "Avoid them",
				D: "Ignore errors",
			},
			CorrectAnswer: "B",
		},
		{
			ID:       5,
			Question: "What helps reinforce learning?",
			Options: models.QuizOptions{
				A: "Never reviewing",
				B: "Passive reading",
				C: "Active practice",
				D: "Multitasking",
			},
			CorrectAnswer: "C",
		},
	}
}

func FallbackRoadmap(topic string) string {
	return fmt.Sprintf("# Learning Roadmap: %s\n\nOur AI-guided learning service is currently experiencing high load. Please try again in 1 minute.", topic)
}
