package engine

import "corp_edu_backend/internal/model"

type GateState string

const (
	// GateLocked 仍有未完成的模块
	GateLocked GateState = "locked"
	// GateUnlockable 模块全部完成（或课程没有模块），测验可作答
	GateUnlockable GateState = "unlockable"
	// GateUnlocked 课程已完成，仍可重考
	GateUnlocked GateState = "unlocked"
)

// CompletedModuleCount 只统计仍存在于课程中的模块
func CompletedModuleCount(course *model.Course, record model.ProgressRecord) int {
	n := 0
	for _, m := range course.Modules {
		if record.HasCompletedModule(m.ID) {
			n++
		}
	}
	return n
}

func AllModulesCompleted(course *model.Course, record model.ProgressRecord) bool {
	return CompletedModuleCount(course, record) == len(course.Modules)
}

func Gate(course *model.Course, record model.ProgressRecord) GateState {
	if record.IsCompleted() {
		return GateUnlocked
	}
	if !AllModulesCompleted(course, record) {
		return GateLocked
	}
	return GateUnlockable
}

// QuizAccepted 课程有测验且模块已全部完成时才接受提交
func QuizAccepted(course *model.Course, record model.ProgressRecord) bool {
	return course.HasQuiz() && Gate(course, record) != GateLocked
}

func Passed(score, passingScore int) bool {
	return score >= passingScore
}

// CompletesWithoutQuiz 无测验课程在最后一个模块完成时视为完成；
// 既无模块也无测验的课程永远无法完成
func CompletesWithoutQuiz(course *model.Course, record model.ProgressRecord) bool {
	return !course.HasQuiz() &&
		len(course.Modules) > 0 &&
		!record.IsCompleted() &&
		AllModulesCompleted(course, record)
}
