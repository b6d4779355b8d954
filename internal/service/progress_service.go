package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/engine"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/pkg/logger"
	"corp_edu_backend/pkg/monitoring"
	"corp_edu_backend/pkg/tracing"
)

// ProgressService 学习进度与激励的协调者：模块完成、测验、课程通过、徽章与证书。
// 每个变更都在一个事务里写库，通知在事务提交后推送。
type ProgressService struct {
	tx            txRunner
	courses       courseStore
	users         userStore
	progress      progressStore
	reviews       reviewStore
	discussions   *DiscussionService
	ledger        *LedgerService
	notifications *NotificationService
	now           Clock
}

func NewProgressService(
	tx txRunner,
	courses courseStore,
	users userStore,
	progress progressStore,
	reviews reviewStore,
	discussions *DiscussionService,
	ledger *LedgerService,
	notifications *NotificationService,
) *ProgressService {
	return &ProgressService{
		tx:            tx,
		courses:       courses,
		users:         users,
		progress:      progress,
		reviews:       reviews,
		discussions:   discussions,
		ledger:        ledger,
		notifications: notifications,
		now:           time.Now,
	}
}

// CourseView 学员打开课程时看到的内容
type CourseView struct {
	Course     model.Course           `json:"course"`
	Progress   model.ProgressRecord   `json:"progress"`
	Gate       engine.GateState       `json:"gate"`
	Completed  int                    `json:"completedModules"`
	Discussion []model.DiscussionNode `json:"discussion"`
}

type ModuleResult struct {
	ModuleID         string               `json:"moduleId"`
	AlreadyCompleted bool                 `json:"alreadyCompleted"`
	PointsAwarded    int                  `json:"pointsAwarded"`
	TotalPoints      int                  `json:"totalPoints"`
	Gate             engine.GateState     `json:"gate"`
	CourseCompleted  bool                 `json:"courseCompleted"`
	NewBadges        []model.Badge        `json:"newBadges"`
	Progress         model.ProgressRecord `json:"progress"`
}

type QuizResult struct {
	Score           int                    `json:"score"`
	Passed          bool                   `json:"passed"`
	PassingScore    int                    `json:"passingScore"`
	FirstCompletion bool                   `json:"firstCompletion"`
	PointsAwarded   int                    `json:"pointsAwarded"`
	TotalPoints     int                    `json:"totalPoints"`
	NewBadges       []model.Badge          `json:"newBadges"`
	Certificate     *model.CertificateData `json:"certificate,omitempty"`
	Progress        model.ProgressRecord   `json:"progress"`
}

// coursePass 一次课程通过事件的计算结果
type coursePass struct {
	first       bool
	badges      []string
	badgePoints int
}

// change 一次状态变更需要写入的全部内容
// errModuleCompletedConcurrently 加锁后发现模块已被并发请求完成
var errModuleCompletedConcurrently = errors.New("module already completed")

type change struct {
	// module 非空时，提交前在行锁下重新确认该模块尚未完成
	module        string
	record        model.ProgressRecord
	user          model.User
	modulePoints  int
	coursePoints  int
	pass          *coursePass
	notifications []model.Notification
}

func (c *change) points() int {
	total := c.modulePoints + c.coursePoints
	if c.pass != nil {
		total += c.pass.badgePoints
	}
	return total
}

// ViewCourse 返回课程、进度与讨论区，并记录最近查看时间
func (s *ProgressService) ViewCourse(ctx context.Context, user *model.User, courseID string) (view *CourseView, err error) {
	ctx, span := tracing.Start(ctx, "progress.ViewCourse", attribute.String("course.id", courseID))
	defer func() { tracing.End(span, err) }()

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	rec, err := s.progress.Find(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}

	next := rec.Clone()
	now := s.now()
	next.RecentlyViewed = &now
	if err := s.progress.Save(ctx, next); err != nil {
		return nil, err
	}

	thread, err := s.discussions.Thread(ctx, courseID)
	if err != nil {
		return nil, err
	}

	shown := *course
	if !user.IsAdmin() {
		shown = course.WithoutAnswers()
	}
	return &CourseView{
		Course:     shown,
		Progress:   next,
		Gate:       engine.Gate(course, next),
		Completed:  engine.CompletedModuleCount(course, next),
		Discussion: thread,
	}, nil
}

// CompleteModule 标记模块完成。重复完成不加分；无测验课程完成最后一个模块即视为通过。
func (s *ProgressService) CompleteModule(ctx context.Context, user *model.User, courseID, moduleID string) (res *ModuleResult, err error) {
	ctx, span := tracing.Start(ctx, "progress.CompleteModule",
		attribute.String("course.id", courseID),
		attribute.String("module.id", moduleID))
	defer func() { tracing.End(span, err) }()

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if _, ok := course.FindModule(moduleID); !ok {
		return nil, apperr.ErrModuleNotFound
	}
	session, err := s.openSession(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}

	rec := session.Record()
	if rec.HasCompletedModule(moduleID) {
		return alreadyCompleted(course, moduleID, session), nil
	}

	ch := &change{module: moduleID, record: rec.Clone(), user: session.User(), modulePoints: engine.ModuleCompletionPoints}
	ch.record.CompletedModules = append(ch.record.CompletedModules, moduleID)
	if engine.CompletesWithoutQuiz(course, ch.record) {
		if err := s.planPass(ctx, ch, course, nil); err != nil {
			return nil, err
		}
	}

	total, err := s.apply(ctx, session, ch)
	if errors.Is(err, errModuleCompletedConcurrently) {
		if session, err = s.openSession(ctx, user.ID, courseID); err != nil {
			return nil, err
		}
		return alreadyCompleted(course, moduleID, session), nil
	}
	if err != nil {
		return nil, err
	}

	committed := session.Record()
	return &ModuleResult{
		ModuleID:        moduleID,
		PointsAwarded:   ch.points(),
		TotalPoints:     total,
		Gate:            engine.Gate(course, committed),
		CourseCompleted: ch.pass != nil && ch.pass.first,
		NewBadges:       badgeList(ch.pass),
		Progress:        committed,
	}, nil
}

// SubmitQuiz 评分并保存最近一次成绩；首次通过时设置完成时间并发放奖励
func (s *ProgressService) SubmitQuiz(ctx context.Context, user *model.User, courseID string, answers []string) (res *QuizResult, err error) {
	ctx, span := tracing.Start(ctx, "progress.SubmitQuiz", attribute.String("course.id", courseID))
	defer func() { tracing.End(span, err) }()

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.HasQuiz() {
		return nil, apperr.Validation("quiz not applicable: this course has no quiz")
	}
	session, err := s.openSession(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}
	if !engine.QuizAccepted(course, session.Record()) {
		return nil, apperr.Validation("complete all modules before taking the quiz")
	}

	score, err := engine.Score(course.Quiz, answers)
	if err != nil {
		return nil, err
	}
	passed := engine.Passed(score, course.PassingScore)

	ch := &change{record: session.Record().Clone(), user: session.User()}
	ch.record.QuizScore = intPtr(score)
	if passed {
		if err := s.planPass(ctx, ch, course, intPtr(score)); err != nil {
			return nil, err
		}
	}

	total, err := s.apply(ctx, session, ch)
	if err != nil {
		return nil, err
	}

	out := &QuizResult{
		Score:           score,
		Passed:          passed,
		PassingScore:    course.PassingScore,
		FirstCompletion: ch.pass != nil && ch.pass.first,
		PointsAwarded:   ch.points(),
		TotalPoints:     total,
		NewBadges:       badgeList(ch.pass),
		Progress:        session.Record(),
	}
	if passed {
		u := session.User()
		cert, err := engine.IssueCertificate(&u, course, session.Record())
		if err != nil {
			return nil, err
		}
		out.Certificate = &cert
	}
	return out, nil
}

// RateCourse 保存评分与评价；同一学员再次提交会覆盖之前的评价
func (s *ProgressService) RateCourse(ctx context.Context, user *model.User, courseID string, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, err
	}
	session, err := s.openSession(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}

	next := session.Record().Clone()
	next.Rating = intPtr(rating)
	review := &model.Review{
		CourseID:   courseID,
		AuthorID:   user.ID,
		AuthorName: user.Name,
		Rating:     rating,
		Comment:    trimmed(comment),
	}

	err = session.Apply(session.User(), next, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.progress.Save(ctx, next); err != nil {
				return err
			}
			return s.reviews.Upsert(ctx, review)
		})
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// Certificate 课程未完成时返回 NotFound
func (s *ProgressService) Certificate(ctx context.Context, userID, courseID string) (*model.CertificateData, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, err := s.progress.Find(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	cert, err := engine.IssueCertificate(user, course, rec)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// MyProgress 学员所有课程的进度，按课程 id 索引
func (s *ProgressService) MyProgress(ctx context.Context, userID string) (map[string]model.ProgressRecord, error) {
	records, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.ProgressRecord, len(records))
	for _, r := range records {
		out[r.CourseID] = r
	}
	return out, nil
}

func (s *ProgressService) openSession(ctx context.Context, userID, courseID string) (*LearnerSession, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, err := s.progress.Find(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return newLearnerSession(*user, rec), nil
}

// planPass 计算课程通过事件：首次通过设置完成时间并加 100 分，随后评估徽章
func (s *ProgressService) planPass(ctx context.Context, ch *change, course *model.Course, score *int) error {
	pass := &coursePass{first: !ch.record.IsCompleted()}
	if pass.first {
		now := s.now()
		ch.record.CompletionDate = &now
		ch.coursePoints = engine.CourseCompletionPoints
		ch.notifications = append(ch.notifications,
			s.notifications.Build(ch.user.ID, model.NotificationCertificate, certificateMessage(course.Title)))
	}

	records, err := s.progress.ListByUser(ctx, ch.user.ID)
	if err != nil {
		return err
	}
	ids, err := s.courses.IDs(ctx)
	if err != nil {
		return err
	}
	courseIDs := make(map[string]bool, len(ids))
	for _, id := range ids {
		courseIDs[id] = true
	}

	pass.badges = engine.EvaluateBadges(ch.user.Badges, engine.BadgeContext{
		CompletedCourses: engine.CountCompleted(withRecord(records, ch.record), courseIDs),
		TotalCourses:     len(ids),
		TriggeringScore:  score,
	})
	pass.badgePoints = engine.BadgePoints(pass.badges)
	for _, id := range pass.badges {
		ch.notifications = append(ch.notifications,
			s.notifications.Build(ch.user.ID, model.NotificationBadge, badgeMessage(model.BadgeDefinitions[id])))
	}
	ch.user.Badges = append(slices.Clone(ch.user.Badges), pass.badges...)
	ch.pass = pass
	return nil
}

// apply 在一个事务里写入进度、积分、徽章与通知，成功后提交会话并推送通知
func (s *ProgressService) apply(ctx context.Context, session *LearnerSession, ch *change) (int, error) {
	ch.user.Points += ch.points()
	total := session.User().Points

	err := session.Apply(ch.user, ch.record, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if ch.module != "" {
				locked, err := s.progress.FindForUpdate(ctx, ch.record.UserID, ch.record.CourseID)
				if err != nil {
					return err
				}
				if locked.HasCompletedModule(ch.module) {
					return errModuleCompletedConcurrently
				}
			}
			if err := s.progress.Save(ctx, ch.record); err != nil {
				return err
			}
			if ch.modulePoints > 0 {
				t, err := s.ledger.Award(ctx, ch.user.ID, ch.modulePoints, ReasonModule)
				if err != nil {
					return err
				}
				total = t
			}
			if ch.coursePoints > 0 {
				t, err := s.ledger.Award(ctx, ch.user.ID, ch.coursePoints, ReasonCourse)
				if err != nil {
					return err
				}
				total = t
			}
			if ch.pass != nil && len(ch.pass.badges) > 0 {
				t, err := s.ledger.GrantBadges(ctx, ch.user.ID, ch.pass.badges, ch.pass.badgePoints)
				if err != nil {
					return err
				}
				total = t
			}
			return s.notifications.Persist(ctx, ch.notifications)
		})
	})
	if err != nil && !errors.Is(err, errModuleCompletedConcurrently) {
		logger.Log.Warn("Progress change discarded",
			zap.String("userId", ch.user.ID),
			zap.String("courseId", ch.record.CourseID),
			zap.Error(err))
	}
	if err != nil {
		return 0, err
	}

	if ch.pass != nil && ch.pass.first {
		monitoring.CourseCompletions.Inc()
		logger.Log.Info("Course completed",
			zap.String("userId", ch.user.ID),
			zap.String("courseId", ch.record.CourseID),
			zap.Strings("newBadges", ch.pass.badges))
	}
	s.notifications.Publish(ctx, ch.notifications)
	return total, nil
}

// alreadyCompleted 重复完成同一模块不再加分
func alreadyCompleted(course *model.Course, moduleID string, session *LearnerSession) *ModuleResult {
	rec := session.Record()
	return &ModuleResult{
		ModuleID:         moduleID,
		AlreadyCompleted: true,
		TotalPoints:      session.User().Points,
		Gate:             engine.Gate(course, rec),
		Progress:         rec,
	}
}

// withRecord 用 rec 替换（或追加）同一课程的记录
func withRecord(records []model.ProgressRecord, rec model.ProgressRecord) []model.ProgressRecord {
	out := make([]model.ProgressRecord, 0, len(records)+1)
	replaced := false
	for _, r := range records {
		if r.CourseID == rec.CourseID {
			out = append(out, rec)
			replaced = true
			continue
		}
		out = append(out, r)
	}
	if !replaced {
		out = append(out, rec)
	}
	return out
}

func badgeList(pass *coursePass) []model.Badge {
	out := []model.Badge{}
	if pass == nil {
		return out
	}
	for _, id := range pass.badges {
		out = append(out, model.BadgeDefinitions[id])
	}
	return out
}
