package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/engine"
	"corp_edu_backend/internal/model"
)

func TestCompleteModuleAwardsPointsOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("c1", 2, 4, 70)

	res, err := f.progress.CompleteModule(ctx, u, c.ID, "c1-m0")
	require.NoError(t, err)
	assert.Equal(t, 10, res.PointsAwarded)
	assert.Equal(t, 10, res.TotalPoints)
	assert.Equal(t, engine.GateLocked, res.Gate)

	again, err := f.progress.CompleteModule(ctx, u, c.ID, "c1-m0")
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Zero(t, again.PointsAwarded)
	assert.Equal(t, 10, f.user(u.ID).Points)

	res, err = f.progress.CompleteModule(ctx, u, c.ID, "c1-m1")
	require.NoError(t, err)
	assert.Equal(t, engine.GateUnlockable, res.Gate)
	assert.False(t, res.CourseCompleted)
	assert.Equal(t, 20, f.user(u.ID).Points)
}

func TestCompleteModuleRechecksUnderLock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("c1", 2, 4, 70)

	_, err := f.progress.CompleteModule(ctx, u, c.ID, "c1-m0")
	require.NoError(t, err)
	sent := len(f.db.notifications)

	// 另一个请求读到的是提交前的进度
	tx := fakeTx{db: f.db}
	racing := NewProgressService(tx, fakeCourses{f.db}, fakeUsers{f.db}, staleProgress{fakeProgress{f.db}},
		fakeReviews{f.db}, f.discussions, f.ledger, f.notifications)
	racing.now = f.now

	res, err := racing.CompleteModule(ctx, u, c.ID, "c1-m0")
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Zero(t, res.PointsAwarded)
	assert.Equal(t, 10, res.TotalPoints)
	assert.Equal(t, 10, f.user(u.ID).Points)
	assert.Equal(t, []string{"c1-m0"}, []string(f.record(u.ID, c.ID).CompletedModules))
	assert.Len(t, f.db.notifications, sent)
}

func TestCompleteModuleLockFailureLeavesProgress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("c1", 2, 4, 70)
	f.db.fail["progress.lock"] = errDiskFull

	_, err := f.progress.CompleteModule(ctx, u, c.ID, "c1-m0")
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Zero(t, f.user(u.ID).Points)
	assert.Empty(t, f.record(u.ID, c.ID).CompletedModules)
}

func TestCompleteModuleUnknownIDs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	f.addCourse("c1", 1, 1, 70)

	_, err := f.progress.CompleteModule(ctx, u, "missing", "x")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.progress.CompleteModule(ctx, u, "c1", "nope")
	assert.ErrorIs(t, err, apperr.ErrModuleNotFound)
}

func TestQuizRejectedWhileLocked(t *testing.T) {
	f := newFixture()
	u := f.addUser("Ana", model.RoleEmployee)
	f.addCourse("c1", 2, 4, 70)

	_, err := f.progress.SubmitQuiz(context.Background(), u, "c1", answers(4, 4))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Nil(t, f.record(u.ID, "c1").QuizScore)
}

func TestQuizValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	f.addCourse("noquiz", 1, 0, 70)
	c := f.addCourse("c1", 0, 3, 70)

	_, err := f.progress.SubmitQuiz(ctx, u, "noquiz", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.progress.SubmitQuiz(ctx, u, c.ID, answers(2, 2))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.progress.SubmitQuiz(ctx, u, c.ID, []string{"right", "", "right"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.progress.SubmitQuiz(ctx, u, c.ID, []string{"right", "maybe", "right"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPassRetakeScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("c1", 2, 4, 70)
	f.addCourse("c2", 1, 1, 70)
	f.completeModules(u, c)

	res, err := f.progress.SubmitQuiz(ctx, u, c.ID, answers(4, 3))
	require.NoError(t, err)
	assert.Equal(t, 75, res.Score)
	assert.True(t, res.Passed)
	assert.True(t, res.FirstCompletion)
	assert.Equal(t, 100+25, res.PointsAwarded)
	assert.Equal(t, 20+100+25, res.TotalPoints)
	require.Len(t, res.NewBadges, 1)
	assert.Equal(t, model.BadgeFirstCourse, res.NewBadges[0].ID)
	require.NotNil(t, res.Certificate)
	assert.Equal(t, "Ana", res.Certificate.EmployeeName)

	first := f.record(u.ID, c.ID).CompletionDate
	require.NotNil(t, first)
	assert.Len(t, f.db.notificationsFor(u.ID, model.NotificationCertificate), 1)
	assert.Len(t, f.db.notificationsFor(u.ID, model.NotificationBadge), 1)

	retake, err := f.progress.SubmitQuiz(ctx, u, c.ID, answers(4, 2))
	require.NoError(t, err)
	assert.Equal(t, 50, retake.Score)
	assert.False(t, retake.Passed)
	assert.Zero(t, retake.PointsAwarded)
	assert.Empty(t, retake.NewBadges)

	rec := f.record(u.ID, c.ID)
	assert.Equal(t, 50, *rec.QuizScore)
	assert.Equal(t, *first, *rec.CompletionDate)
	assert.Equal(t, 145, f.user(u.ID).Points)
	assert.Len(t, f.db.notificationsFor(u.ID, model.NotificationCertificate), 1)

	cert, err := f.progress.Certificate(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Format(engine.CertificateDateLayout), cert.CompletionDate)
}

func TestRepassKeepsDateAndCanEarnQuizMaster(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("c1", 1, 2, 50)
	f.addCourse("c2", 1, 1, 50)
	f.completeModules(u, c)

	_, err := f.progress.SubmitQuiz(ctx, u, c.ID, answers(2, 1))
	require.NoError(t, err)
	first := *f.record(u.ID, c.ID).CompletionDate

	res, err := f.progress.SubmitQuiz(ctx, u, c.ID, answers(2, 2))
	require.NoError(t, err)
	assert.False(t, res.FirstCompletion)
	assert.Equal(t, 50, res.PointsAwarded)
	require.Len(t, res.NewBadges, 1)
	assert.Equal(t, model.BadgeQuizMaster, res.NewBadges[0].ID)
	assert.Equal(t, first, *f.record(u.ID, c.ID).CompletionDate)

	res, err = f.progress.SubmitQuiz(ctx, u, c.ID, answers(2, 2))
	require.NoError(t, err)
	assert.Empty(t, res.NewBadges)
	assert.Zero(t, res.PointsAwarded)
}

func TestThirdCourseGrantsProlificLearnerOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	var courses []*model.Course
	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		courses = append(courses, f.addCourse(id, 1, 1, 100))
	}

	for _, c := range courses[:3] {
		f.completeModules(u, c)
		_, err := f.progress.SubmitQuiz(ctx, u, c.ID, answers(1, 1))
		require.NoError(t, err)
	}

	user := f.user(u.ID)
	assert.Equal(t, []string{model.BadgeFirstCourse, model.BadgeQuizMaster, model.BadgeProlificLearner}, []string(user.Badges))
	assert.Len(t, f.db.notificationsFor(u.ID, model.NotificationBadge), 3)

	// 重考不会重复授予
	_, err := f.progress.SubmitQuiz(ctx, u, "c3", answers(1, 1))
	require.NoError(t, err)
	assert.Len(t, f.db.notificationsFor(u.ID, model.NotificationBadge), 3)

	// 3 门课 × (10 + 100) + 25 + 50 + 75
	assert.Equal(t, 3*110+25+50+75, f.user(u.ID).Points)
}

func TestCompletionistWhenEveryCourseDone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("only", 1, 1, 0)
	f.completeModules(u, c)

	res, err := f.progress.SubmitQuiz(ctx, u, c.ID, answers(1, 0))
	require.NoError(t, err)
	assert.True(t, res.Passed)
	ids := make([]string, 0, len(res.NewBadges))
	for _, b := range res.NewBadges {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{model.BadgeCompletionist, model.BadgeFirstCourse}, ids)
}

func TestEmptyQuizCourseCompletesOnLastModule(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("reading", 2, 0, 70)
	f.addCourse("other", 1, 1, 70)

	res, err := f.progress.CompleteModule(ctx, u, c.ID, "reading-m0")
	require.NoError(t, err)
	assert.False(t, res.CourseCompleted)

	res, err = f.progress.CompleteModule(ctx, u, c.ID, "reading-m1")
	require.NoError(t, err)
	assert.True(t, res.CourseCompleted)
	assert.Equal(t, engine.GateUnlocked, res.Gate)
	assert.Equal(t, 10+100+25, res.PointsAwarded)
	assert.NotNil(t, f.record(u.ID, c.ID).CompletionDate)
	assert.Len(t, f.db.notificationsFor(u.ID, model.NotificationCertificate), 1)

	_, err = f.progress.Certificate(ctx, u.ID, c.ID)
	assert.NoError(t, err)
}

func TestCourseWithoutContentNeverCompletes(t *testing.T) {
	f := newFixture()
	u := f.addUser("Ana", model.RoleEmployee)
	f.addCourse("empty", 0, 0, 70)

	_, err := f.progress.SubmitQuiz(context.Background(), u, "empty", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.progress.Certificate(context.Background(), u.ID, "empty")
	assert.ErrorIs(t, err, apperr.ErrCertificateNotFound)
}

func TestFailedPersistenceDiscardsWholeChange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("c1", 1, 1, 70)
	f.addCourse("c2", 1, 1, 70)
	f.completeModules(u, c)
	published := f.publisher.count()

	f.db.fail["user.grant_badges"] = errDiskFull
	_, err := f.progress.SubmitQuiz(ctx, u, c.ID, answers(1, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	assert.True(t, errors.Is(err, errDiskFull))

	rec := f.record(u.ID, c.ID)
	assert.Nil(t, rec.CompletionDate)
	assert.Nil(t, rec.QuizScore)
	assert.Equal(t, 10, f.user(u.ID).Points)
	assert.Empty(t, f.user(u.ID).Badges)
	assert.Empty(t, f.db.notificationsFor(u.ID, model.NotificationCertificate))
	assert.Equal(t, published, f.publisher.count())

	delete(f.db.fail, "user.grant_badges")
	res, err := f.progress.SubmitQuiz(ctx, u, c.ID, answers(1, 1))
	require.NoError(t, err)
	assert.True(t, res.FirstCompletion)
}

func TestLearnerSessionKeepsCommittedStateOnFailure(t *testing.T) {
	user := model.User{Name: "Ana", Points: 5}
	rec := model.NewProgressRecord("u", "c")
	s := newLearnerSession(user, rec)

	nextUser := user
	nextUser.Points = 15
	nextRec := rec.Clone()
	nextRec.CompletedModules = append(nextRec.CompletedModules, "m1")

	err := s.Apply(nextUser, nextRec, func() error { return errDiskFull })
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 5, s.User().Points)
	assert.Empty(t, s.Record().CompletedModules)

	require.NoError(t, s.Apply(nextUser, nextRec, func() error { return nil }))
	assert.Equal(t, 15, s.User().Points)
	assert.Equal(t, []string{"m1"}, []string(s.Record().CompletedModules))
}

func TestRateCourse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	f.addCourse("c1", 1, 1, 70)

	_, err := f.progress.RateCourse(ctx, u, "c1", 6, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.progress.RateCourse(ctx, u, "gone", 4, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	first, err := f.progress.RateCourse(ctx, u, "c1", 3, "ok")
	require.NoError(t, err)
	second, err := f.progress.RateCourse(ctx, u, "c1", 5, "  great  ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	reviews, _ := fakeReviews{f.db}.ListByCourse(ctx, "c1")
	require.Len(t, reviews, 1)
	assert.Equal(t, "great", reviews[0].Comment)
	assert.Equal(t, 5, *f.record(u.ID, "c1").Rating)
}

func TestRateCourseRollsBackRatingWhenReviewFails(t *testing.T) {
	f := newFixture()
	u := f.addUser("Ana", model.RoleEmployee)
	f.addCourse("c1", 1, 1, 70)
	f.db.fail["review.upsert"] = errDiskFull

	_, err := f.progress.RateCourse(context.Background(), u, "c1", 4, "")
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Nil(t, f.record(u.ID, "c1").Rating)
}

func TestViewCourseHidesAnswersFromLearners(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	learner := f.addUser("Ana", model.RoleEmployee)
	admin := f.addUser("Root", model.RoleAdmin)
	f.addCourse("c1", 1, 2, 70)

	view, err := f.progress.ViewCourse(ctx, learner, "c1")
	require.NoError(t, err)
	assert.Empty(t, view.Course.Quiz[0].CorrectAnswer)
	assert.NotNil(t, view.Progress.RecentlyViewed)
	assert.Equal(t, engine.GateLocked, view.Gate)
	assert.NotNil(t, f.record(learner.ID, "c1").RecentlyViewed)

	view, err = f.progress.ViewCourse(ctx, admin, "c1")
	require.NoError(t, err)
	assert.Equal(t, "right", view.Course.Quiz[0].CorrectAnswer)

	_, err = f.progress.ViewCourse(ctx, learner, "deleted")
	assert.ErrorIs(t, err, apperr.ErrCourseNotFound)
}

func TestMyProgress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("c1", 1, 1, 70)
	f.completeModules(u, c)

	got, err := f.progress.MyProgress(ctx, u.ID)
	require.NoError(t, err)
	require.Contains(t, got, "c1")
	assert.Equal(t, []string{"c1-m0"}, []string(got["c1"].CompletedModules))
}

func TestPublishedAfterCommit(t *testing.T) {
	f := newFixture()
	u := f.addUser("Ana", model.RoleEmployee)
	c := f.addCourse("c1", 1, 0, 70)
	f.addCourse("c2", 1, 0, 70)
	f.completeModules(u, c)

	// 证书 + first-course 徽章
	assert.Equal(t, 2, f.publisher.count())
}
