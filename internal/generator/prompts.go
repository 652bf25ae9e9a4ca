package generator

import (
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

const tutorSystemPrompt = "You are a patient technical tutor writing self-study material for adult learners."

func contentPrompt(topic string, difficulty models.Difficulty) string {
	return fmt.Sprintf(`Create a %s level learning module on %q.

Rules:
- Step-by-step explanation
- Examples
- Clear headings
- Plain text`, difficulty, topic)
}

func quizPrompt(topic string, difficulty models.Difficulty) string {
	return fmt.Sprintf(`Create %d MCQ questions on %q at %s level.

Output STRICT JSON (no markdown, no code blocks, just raw JSON):
[
  {
    "id": 1,
    "question": "",
    "options": {"A": "", "B": "", "C": "", "D": ""},
    "correct_answer": "A"
  }
]`, models.QuizQuestionCount, topic, difficulty)
}

func roadmapPrompt(topic string) string {
	return fmt.Sprintf(`Create a professional, highly structured and comprehensive learning roadmap for %q.

Format the output as clean Markdown with these sections:

## 1. Executive Summary
Overview of the topic, why it matters today, career prospects.

## 2. Learning Prerequisites
Foundational concepts and recommended tools.

## 3. The Roadmap (Stage-by-Stage)
Five to seven stages. For each: stage title, key concepts, a short deep dive, a pro tip and a resource type (video, doc or book).

## 4. Hands-on Milestone Projects
One beginner, one intermediate and one advanced project.

## 5. Master's Checklist & Resources
Skills checklist and the top three official docs or repositories.

## 6. Future Trends & Next Steps
Where the field is heading, certifications and specializations.

Separate major sections with horizontal rules and use fenced code blocks for any code.`, topic)
}
