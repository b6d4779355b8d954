package model

import "sort"

const (
	BadgeFirstCourse     = "first-course"
	BadgeProlificLearner = "prolific-learner"
	BadgeQuizMaster      = "quiz-master"
	BadgeCompletionist   = "completionist"
)

// swagger:model Badge
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// BadgeDefinitions 徽章是静态定义，不入库
var BadgeDefinitions = map[string]Badge{
	BadgeFirstCourse: {
		ID:          BadgeFirstCourse,
		Name:        "First Step",
		Description: "Completed your first course.",
		Points:      25,
	},
	BadgeProlificLearner: {
		ID:          BadgeProlificLearner,
		Name:        "Prolific Learner",
		Description: "Completed 3 courses.",
		Points:      75,
	},
	BadgeQuizMaster: {
		ID:          BadgeQuizMaster,
		Name:        "Quiz Master",
		Description: "Achieved a perfect score (100%) on a quiz.",
		Points:      50,
	},
	BadgeCompletionist: {
		ID:          BadgeCompletionist,
		Name:        "Completionist",
		Description: "Completed all available courses.",
		Points:      150,
	},
}

// SortedBadges 按 id 排序返回全部徽章定义
func SortedBadges() []Badge {
	out := make([]Badge, 0, len(BadgeDefinitions))
	for _, b := range BadgeDefinitions {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
