// Package quiz holds the quiz generation value objects.
package quiz

import "fmt"

// QuestionType identifies the kind of questions to generate.
type QuestionType string

const (
	// MultipleChoice questions carry four answer options.
	MultipleChoice QuestionType = "multiple_choice"
	// TrueFalse questions have a boolean answer.
	TrueFalse QuestionType = "true_false"
	// OpenEnded questions have free-form answers.
	OpenEnded QuestionType = "open_ended"
)

// ParseQuestionType validates a question type string. Empty defaults to
// multiple choice.
func ParseQuestionType(s string) (QuestionType, error) {
	switch QuestionType(s) {
	case MultipleChoice, TrueFalse, OpenEnded:
		return QuestionType(s), nil
	case "":
		return MultipleChoice, nil
	default:
		return "", fmt.Errorf("unknown question type %q", s)
	}
}

// Instruction returns the prompt phrase describing this question type.
func (t QuestionType) Instruction() string {
	switch t {
	case TrueFalse:
		return "true-or-false questions"
	case OpenEnded:
		return "open-ended questions"
	default:
		return "multiple-choice questions with 4 options each"
	}
}

// Difficulty identifies the quiz difficulty tier.
type Difficulty string

const (
	// Easy covers fundamental concepts.
	Easy Difficulty = "easy"
	// Medium requires moderate comprehension.
	Medium Difficulty = "medium"
	// Hard requires deep comprehension and critical analysis.
	Hard Difficulty = "hard"
)

// ParseDifficulty validates a difficulty string. Empty defaults to medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case Easy, Medium, Hard:
		return Difficulty(s), nil
	case "":
		return Medium, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Instruction returns the prompt phrase describing this difficulty tier.
func (d Difficulty) Instruction() string {
	switch d {
	case Easy:
		return "basic level, fundamental concepts"
	case Hard:
		return "advanced level, requiring deep comprehension and critical analysis"
	default:
		return "intermediate level, requiring moderate comprehension"
	}
}

// Item is a single generated quiz question.
type Item struct {
	Question    string
	Options     []string
	Answer      string
	Explanation string
}

// Quiz is a generated set of quiz items.
type Quiz struct {
	ID         string
	DocumentID string
	Type       QuestionType
	Difficulty Difficulty
	Items      []Item
}
