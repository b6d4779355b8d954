package service

import (
	"corp_edu_backend/internal/engine"
	"corp_edu_backend/internal/model"
)

// LearnerSession 单次请求内学员与某门课程的已提交状态。
// 变更先计算出下一状态，持久化成功后两者一起提交，失败则都保持原值。
type LearnerSession struct {
	user     *engine.Tentative[model.User]
	progress *engine.Tentative[model.ProgressRecord]
}

func newLearnerSession(user model.User, record model.ProgressRecord) *LearnerSession {
	return &LearnerSession{
		user:     engine.NewTentative(user),
		progress: engine.NewTentative(record),
	}
}

func (s *LearnerSession) User() model.User { return s.user.Value() }

func (s *LearnerSession) Record() model.ProgressRecord { return s.progress.Value() }

func (s *LearnerSession) Apply(user model.User, record model.ProgressRecord, persist func() error) error {
	return s.progress.Apply(record, func(model.ProgressRecord) error {
		return s.user.Apply(user, func(model.User) error {
			return persist()
		})
	})
}
