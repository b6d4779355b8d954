package model

import (
	"fmt"
	"slices"
	"strings"
)

const (
	MinQuizOptions = 2
	MaxQuizOptions = 6
)

// swagger:model QuizQuestion
type QuizQuestion struct {
	ID            string   `json:"id,omitempty"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Validate 选项 2~6 个、去空白后互不相同，正确答案必须是其中之一
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is required")
	}
	if n := len(q.Options); n < MinQuizOptions || n > MaxQuizOptions {
		return fmt.Errorf("question %q must have between %d and %d options, got %d", q.Question, MinQuizOptions, MaxQuizOptions, n)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		key := strings.TrimSpace(opt)
		if key == "" {
			return fmt.Errorf("question %q has an empty option", q.Question)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("question %q has duplicate option %q", q.Question, key)
		}
		seen[key] = struct{}{}
	}
	if q.CorrectAnswer == "" {
		return fmt.Errorf("question %q has no correct answer", q.Question)
	}
	if !slices.Contains(q.Options, q.CorrectAnswer) {
		return fmt.Errorf("correct answer of question %q is not one of its options", q.Question)
	}
	return nil
}

func (q QuizQuestion) IsCorrect(answer string) bool {
	return q.CorrectAnswer != "" && answer == q.CorrectAnswer
}

// SetCorrectAnswer 按值指定正确答案
func (q *QuizQuestion) SetCorrectAnswer(option string) error {
	if !slices.Contains(q.Options, option) {
		return fmt.Errorf("option %q does not exist", option)
	}
	q.CorrectAnswer = option
	return nil
}

// RemoveOption 删除正确答案所在的选项时同时清空正确答案
func (q *QuizQuestion) RemoveOption(index int) error {
	if index < 0 || index >= len(q.Options) {
		return fmt.Errorf("option index %d out of range", index)
	}
	if q.Options[index] == q.CorrectAnswer {
		q.CorrectAnswer = ""
	}
	q.Options = slices.Delete(slices.Clone(q.Options), index, index+1)
	return nil
}

// RenameOption 修改正确答案所在的选项时同步更新正确答案
func (q *QuizQuestion) RenameOption(index int, text string) error {
	if index < 0 || index >= len(q.Options) {
		return fmt.Errorf("option index %d out of range", index)
	}
	options := slices.Clone(q.Options)
	if options[index] == q.CorrectAnswer {
		q.CorrectAnswer = text
	}
	options[index] = text
	q.Options = options
	return nil
}
