// Package engine 学习进度与积分激励的纯计算规则，不做任何 IO
package engine

import (
	"slices"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
)

const (
	ModuleCompletionPoints = 10
	CourseCompletionPoints = 100
)

// Score 计算测验得分：round(100*correct/total)，四舍五入（.5 进位）
// answers[i] 是第 i 题选中的选项，每题都必须作答且只能选已有选项
func Score(quiz []model.QuizQuestion, answers []string) (int, error) {
	total := len(quiz)
	if total == 0 {
		return 0, apperr.Validation("quiz is not applicable for this course")
	}
	if len(answers) != total {
		return 0, apperr.Validation("expected %d answers, got %d", total, len(answers))
	}
	correct := 0
	for i, q := range quiz {
		if answers[i] == "" {
			return 0, apperr.Validation("question %d has not been answered", i+1)
		}
		if !slices.Contains(q.Options, answers[i]) {
			return 0, apperr.Validation("question %d: answer is not one of the options", i+1)
		}
		if q.IsCorrect(answers[i]) {
			correct++
		}
	}
	return roundPercent(correct, total), nil
}

// 整数运算避免浮点误差：floor((200c + n) / 2n)
func roundPercent(correct, total int) int {
	return (200*correct + total) / (2 * total)
}
