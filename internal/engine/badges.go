package engine

import (
	"sort"

	"corp_edu_backend/internal/model"
)

const prolificCourseCount = 3

// BadgeContext 一次课程通过事件时学员的汇总状态
type BadgeContext struct {
	CompletedCourses int
	TotalCourses     int
	// TriggeringScore 为 nil 表示课程通过不是由测验触发的
	TriggeringScore *int
}

// EvaluateBadges 返回新获得的徽章 id（按字母序），已拥有的徽章不会再次返回
func EvaluateBadges(owned []string, ctx BadgeContext) []string {
	has := make(map[string]bool, len(owned))
	for _, id := range owned {
		has[id] = true
	}

	rules := map[string]bool{
		model.BadgeFirstCourse:     ctx.CompletedCourses >= 1,
		model.BadgeProlificLearner: ctx.CompletedCourses >= prolificCourseCount,
		model.BadgeQuizMaster:      ctx.TriggeringScore != nil && *ctx.TriggeringScore == 100,
		model.BadgeCompletionist:   ctx.TotalCourses > 0 && ctx.CompletedCourses == ctx.TotalCourses,
	}

	var earned []string
	for id, ok := range rules {
		if ok && !has[id] {
			earned = append(earned, id)
		}
	}
	sort.Strings(earned)
	return earned
}

func BadgePoints(ids []string) int {
	total := 0
	for _, id := range ids {
		total += model.BadgeDefinitions[id].Points
	}
	return total
}

// CountCompleted 统计已完成且课程仍存在的进度记录
func CountCompleted(records []model.ProgressRecord, courseIDs map[string]bool) int {
	n := 0
	for _, r := range records {
		if r.IsCompleted() && courseIDs[r.CourseID] {
			n++
		}
	}
	return n
}
