package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/repository"
)

var errDiskFull = errors.New("disk full")

type progressKey struct{ user, course string }

// memDB 内存仓储；事务失败时恢复到事务开始前的快照
type memDB struct {
	mu            sync.Mutex
	users         map[string]model.User
	courses       map[string]model.Course
	progress      map[progressKey]model.ProgressRecord
	reviews       map[progressKey]model.Review
	posts         []model.DiscussionPost
	notifications []model.Notification
	categories    map[string]model.CourseCategory
	resources     map[string]model.ExternalResource
	// fail 指定操作名返回的错误
	fail map[string]error
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[string]model.User{},
		courses:    map[string]model.Course{},
		progress:   map[progressKey]model.ProgressRecord{},
		reviews:    map[progressKey]model.Review{},
		categories: map[string]model.CourseCategory{},
		resources:  map[string]model.ExternalResource{},
		fail:       map[string]error{},
	}
}

func (db *memDB) failing(op string) error {
	if err, ok := db.fail[op]; ok {
		return apperr.Persistence(op, err)
	}
	return nil
}

type memSnapshot struct {
	users         map[string]model.User
	courses       map[string]model.Course
	progress      map[progressKey]model.ProgressRecord
	reviews       map[progressKey]model.Review
	posts         []model.DiscussionPost
	notifications []model.Notification
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := memSnapshot{
		users:         map[string]model.User{},
		courses:       map[string]model.Course{},
		progress:      map[progressKey]model.ProgressRecord{},
		reviews:       map[progressKey]model.Review{},
		posts:         slices.Clone(db.posts),
		notifications: slices.Clone(db.notifications),
	}
	for k, v := range db.users {
		v.Badges = slices.Clone(v.Badges)
		s.users[k] = v
	}
	for k, v := range db.courses {
		s.courses[k] = v
	}
	for k, v := range db.progress {
		s.progress[k] = v.Clone()
	}
	for k, v := range db.reviews {
		s.reviews[k] = v
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users, db.courses, db.progress, db.reviews = s.users, s.courses, s.progress, s.reviews
	db.posts, db.notifications = s.posts, s.notifications
}

type fakeTx struct{ db *memDB }

func (t fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

// ---- users ----

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(ctx context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failing("user.create"); err != nil {
		return err
	}
	for _, existing := range f.db.users {
		if existing.Email == u.Email {
			return apperr.Conflict("email already registered")
		}
	}
	if u.ID == "" {
		u.ID = model.GenerateUUID()
	}
	f.db.users[u.ID] = *u
	return nil
}

func (f fakeUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	u.Badges = slices.Clone(u.Badges)
	return &u, nil
}

func (f fakeUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (f fakeUsers) List(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.User
	for _, u := range f.db.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Approved != nil && u.Approved != *filter.Approved {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeUsers) LearnerIDs(ctx context.Context) ([]string, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var ids []string
	for id, u := range f.db.users {
		if !u.IsAdmin() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f fakeUsers) Leaderboard(ctx context.Context, limit int) ([]model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.User
	for _, u := range f.db.users {
		if !u.IsAdmin() && u.Approved {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeUsers) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return apperr.ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "role":
			u.Role = v.(model.UserRole)
		case "profile_image_url":
			u.ProfileImageURL = v.(string)
		}
	}
	f.db.users[id] = u
	return nil
}

func (f fakeUsers) Approve(ctx context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return apperr.ErrUserNotFound
	}
	u.Approved = true
	f.db.users[id] = u
	return nil
}

func (f fakeUsers) AddPoints(ctx context.Context, id string, amount int) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failing("user.add_points"); err != nil {
		return 0, err
	}
	u, ok := f.db.users[id]
	if !ok {
		return 0, apperr.ErrUserNotFound
	}
	u.Points += amount
	f.db.users[id] = u
	return u.Points, nil
}

func (f fakeUsers) SetPoints(ctx context.Context, id string, points int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u := f.db.users[id]
	u.Points = points
	f.db.users[id] = u
	return nil
}

func (f fakeUsers) GrantBadges(ctx context.Context, id string, badges []string, points int) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failing("user.grant_badges"); err != nil {
		return 0, err
	}
	u := f.db.users[id]
	merged := slices.Clone(u.Badges)
	for _, b := range badges {
		if !slices.Contains(merged, b) {
			merged = append(merged, b)
		}
	}
	u.Badges = datatypes.JSONSlice[string](merged)
	u.Points += points
	f.db.users[id] = u
	return u.Points, nil
}

func (f fakeUsers) Touch(ctx context.Context, id string, at time.Time) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u := f.db.users[id]
	u.LastSeen = at
	f.db.users[id] = u
	return nil
}

func (f fakeUsers) Delete(ctx context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.users[id]; !ok {
		return apperr.ErrUserNotFound
	}
	delete(f.db.users, id)
	return nil
}

func (f fakeUsers) CountByRole(ctx context.Context, role model.UserRole) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for _, u := range f.db.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ---- courses ----

type fakeCourses struct{ db *memDB }

func (f fakeCourses) Create(ctx context.Context, c *model.Course) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failing("course.create"); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = model.GenerateUUID()
	}
	f.db.courses[c.ID] = *c
	return nil
}

func (f fakeCourses) Update(ctx context.Context, c *model.Course) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.courses[c.ID]; !ok {
		return apperr.ErrCourseNotFound
	}
	f.db.courses[c.ID] = *c
	return nil
}

func (f fakeCourses) FindByID(ctx context.Context, id string) (*model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.courses[id]
	if !ok {
		return nil, apperr.ErrCourseNotFound
	}
	return &c, nil
}

func (f fakeCourses) List(ctx context.Context, category string) ([]model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Course
	for _, c := range f.db.courses {
		if category == "" || c.Category == category {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f fakeCourses) FindByIDs(ctx context.Context, ids []string) ([]model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Course
	for _, id := range ids {
		if c, ok := f.db.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeCourses) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Course
	for _, c := range f.db.courses {
		if strings.Contains(strings.ToLower(c.Title+" "+c.Description), strings.ToLower(keyword)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeCourses) IDs(ctx context.Context) ([]string, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var ids []string
	for id := range f.db.courses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f fakeCourses) Delete(ctx context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.courses[id]; !ok {
		return apperr.ErrCourseNotFound
	}
	delete(f.db.courses, id)
	if err := f.db.failing("course.delete_data"); err != nil {
		return err
	}
	for k := range f.db.progress {
		if k.course == id {
			delete(f.db.progress, k)
		}
	}
	for k := range f.db.reviews {
		if k.course == id {
			delete(f.db.reviews, k)
		}
	}
	f.db.posts = slices.DeleteFunc(f.db.posts, func(p model.DiscussionPost) bool { return p.CourseID == id })
	return nil
}

func (f fakeCourses) CountByCategory(ctx context.Context, category string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for _, c := range f.db.courses {
		if c.Category == category {
			n++
		}
	}
	return n, nil
}

func (f fakeCourses) RenameCategory(ctx context.Context, from, to string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for id, c := range f.db.courses {
		if c.Category == from {
			c.Category = to
			f.db.courses[id] = c
		}
	}
	return nil
}

// ---- progress ----

type fakeProgress struct{ db *memDB }

func (f fakeProgress) Find(ctx context.Context, userID, courseID string) (model.ProgressRecord, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if rec, ok := f.db.progress[progressKey{userID, courseID}]; ok {
		return rec.Clone(), nil
	}
	return model.NewProgressRecord(userID, courseID), nil
}

func (f fakeProgress) FindForUpdate(ctx context.Context, userID, courseID string) (model.ProgressRecord, error) {
	f.db.mu.Lock()
	failed := f.db.failing("progress.lock")
	f.db.mu.Unlock()
	if failed != nil {
		return model.ProgressRecord{}, failed
	}
	return f.Find(ctx, userID, courseID)
}

// staleProgress 模拟在另一请求提交之前读到的旧进度
type staleProgress struct{ fakeProgress }

func (f staleProgress) Find(ctx context.Context, userID, courseID string) (model.ProgressRecord, error) {
	return model.NewProgressRecord(userID, courseID), nil
}

func (f fakeProgress) ListByUser(ctx context.Context, userID string) ([]model.ProgressRecord, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.ProgressRecord
	for k, rec := range f.db.progress {
		if k.user == userID {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func (f fakeProgress) ListAll(ctx context.Context) ([]model.ProgressRecord, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.ProgressRecord
	for _, rec := range f.db.progress {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CourseID < out[j].CourseID
	})
	return out, nil
}

func (f fakeProgress) Save(ctx context.Context, rec model.ProgressRecord) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failing("progress.save"); err != nil {
		return err
	}
	f.db.progress[progressKey{rec.UserID, rec.CourseID}] = rec.Clone()
	return nil
}

// ---- reviews ----

type fakeReviews struct{ db *memDB }

func (f fakeReviews) Upsert(ctx context.Context, r *model.Review) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failing("review.upsert"); err != nil {
		return err
	}
	key := progressKey{r.AuthorID, r.CourseID}
	if existing, ok := f.db.reviews[key]; ok {
		r.ID = existing.ID
	} else if r.ID == "" {
		r.ID = model.GenerateUUID()
	}
	f.db.reviews[key] = *r
	return nil
}

func (f fakeReviews) ListByCourse(ctx context.Context, courseID string) ([]model.Review, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Review
	for k, r := range f.db.reviews {
		if k.course == courseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeReviews) ListAll(ctx context.Context) ([]model.Review, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Review
	for _, r := range f.db.reviews {
		out = append(out, r)
	}
	return out, nil
}

// ---- discussion ----

type fakePosts struct{ db *memDB }

func (f fakePosts) ListByCourse(ctx context.Context, courseID string) ([]model.DiscussionPost, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.DiscussionPost
	for _, p := range f.db.posts {
		if p.CourseID == courseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePosts) ListByCourses(ctx context.Context, courseIDs []string) ([]model.DiscussionPost, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.DiscussionPost
	for _, p := range f.db.posts {
		if slices.Contains(courseIDs, p.CourseID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePosts) Create(ctx context.Context, p *model.DiscussionPost) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failing("post.create"); err != nil {
		return err
	}
	f.db.posts = append(f.db.posts, *p)
	return nil
}

func (f fakePosts) DeleteByCourse(ctx context.Context, courseID string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	kept := f.db.posts[:0]
	var n int64
	for _, p := range f.db.posts {
		if p.CourseID == courseID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	f.db.posts = kept
	return n, nil
}

// ---- notifications ----

type fakeNotifications struct{ db *memDB }

func (f fakeNotifications) CreateBatch(ctx context.Context, items []model.Notification) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failing("notification.create"); err != nil {
		return err
	}
	f.db.notifications = append(f.db.notifications, items...)
	return nil
}

func (f fakeNotifications) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Notification
	for _, n := range f.db.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeNotifications) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for i := range f.db.notifications {
		if f.db.notifications[i].UserID == userID && !f.db.notifications[i].Read {
			f.db.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

func (f fakeNotifications) CountUnread(ctx context.Context, userID string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for _, item := range f.db.notifications {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (db *memDB) notificationsFor(userID string, typ model.NotificationType) []model.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []model.Notification
	for _, n := range db.notifications {
		if n.UserID == userID && n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// ---- publisher ----

type recordingPublisher struct {
	mu    sync.Mutex
	items []model.Notification
}

func (p *recordingPublisher) Publish(ctx context.Context, items []model.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, items...)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// ---- fixtures ----

type fixture struct {
	db            *memDB
	publisher     *recordingPublisher
	clock         time.Time
	notifications *NotificationService
	ledger        *LedgerService
	discussions   *DiscussionService
	progress      *ProgressService
}

func newFixture() *fixture {
	db := newMemDB()
	f := &fixture{db: db, publisher: &recordingPublisher{}, clock: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}
	tx := fakeTx{db: db}
	f.notifications = NewNotificationService(fakeNotifications{db}, fakeUsers{db}, tx, f.publisher)
	f.notifications.now = f.now
	f.ledger = NewLedgerService(fakeUsers{db})
	f.discussions = NewDiscussionService(fakePosts{db}, fakeCourses{db})
	f.discussions.now = f.now
	f.progress = NewProgressService(tx, fakeCourses{db}, fakeUsers{db}, fakeProgress{db}, fakeReviews{db}, f.discussions, f.ledger, f.notifications)
	f.progress.now = f.now
	return f
}

// now 每次调用前进一秒，保证时间戳有序
func (f *fixture) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) addUser(name string, role model.UserRole) *model.User {
	u := model.User{Name: name, Email: strings.ToLower(name) + "@corp.test", Role: role, Approved: true}
	u.ID = "u-" + strings.ToLower(name)
	f.db.users[u.ID] = u
	return &u
}

func (f *fixture) addCourse(id string, modules, questions, passing int) *model.Course {
	c := model.Course{Title: "Course " + id, PassingScore: passing}
	c.ID = id
	for i := 0; i < modules; i++ {
		m := model.NewTextModule("Module", "<p>body</p>")
		m.ID = id + "-m" + itoa(i)
		c.Modules = append(c.Modules, m)
	}
	for i := 0; i < questions; i++ {
		c.Quiz = append(c.Quiz, model.QuizQuestion{
			ID:            id + "-q" + itoa(i),
			Question:      "Q" + itoa(i),
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
		})
	}
	f.db.courses[id] = c
	return &c
}

func (f *fixture) user(id string) model.User {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.users[id]
}

func (f *fixture) record(userID, courseID string) model.ProgressRecord {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.progress[progressKey{userID, courseID}]
}

// completeModules 完成课程的全部模块
func (f *fixture) completeModules(u *model.User, course *model.Course) {
	for _, m := range course.Modules {
		if _, err := f.progress.CompleteModule(context.Background(), u, course.ID, m.ID); err != nil {
			panic(err)
		}
	}
}

func answers(n, correct int) []string {
	out := make([]string, n)
	for i := range out {
		if i < correct {
			out[i] = "right"
		} else {
			out[i] = "wrong"
		}
	}
	return out
}

// ---- categories ----

type fakeCategories struct{ db *memDB }

func (f fakeCategories) List(ctx context.Context) ([]model.CourseCategory, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.CourseCategory
	for _, c := range f.db.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeCategories) FindByID(ctx context.Context, id string) (*model.CourseCategory, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.categories[id]
	if !ok {
		return nil, apperr.ErrCategoryNotFound
	}
	return &c, nil
}

func (f fakeCategories) Create(ctx context.Context, c *model.CourseCategory) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if c.ID == "" {
		c.ID = model.GenerateUUID()
	}
	f.db.categories[c.ID] = *c
	return nil
}

func (f fakeCategories) Rename(ctx context.Context, id, name string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.failing("category.rename"); err != nil {
		return err
	}
	c := f.db.categories[id]
	c.Name = name
	f.db.categories[id] = c
	return nil
}

func (f fakeCategories) Delete(ctx context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.categories[id]; !ok {
		return apperr.ErrCategoryNotFound
	}
	delete(f.db.categories, id)
	return nil
}

// ---- resources ----

type fakeResources struct{ db *memDB }

func (f fakeResources) List(ctx context.Context, typ model.ExternalResourceType) ([]model.ExternalResource, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.ExternalResource
	for _, r := range f.db.resources {
		if typ == "" || r.Type == typ {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f fakeResources) FindByID(ctx context.Context, id string) (*model.ExternalResource, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.resources[id]
	if !ok {
		return nil, apperr.ErrResourceNotFound
	}
	return &r, nil
}

func (f fakeResources) Create(ctx context.Context, r *model.ExternalResource) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if r.ID == "" {
		r.ID = model.GenerateUUID()
	}
	f.db.resources[r.ID] = *r
	return nil
}

func (f fakeResources) Update(ctx context.Context, r *model.ExternalResource) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.resources[r.ID]; !ok {
		return apperr.ErrResourceNotFound
	}
	f.db.resources[r.ID] = *r
	return nil
}

func (f fakeResources) Delete(ctx context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.resources[id]; !ok {
		return apperr.ErrResourceNotFound
	}
	delete(f.db.resources, id)
	return nil
}

// ---- search index ----

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[string]string
	deleted []string
	hits    []string
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[string]string{}}
}

func (i *fakeIndex) Index(ctx context.Context, c *model.Course) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.indexed[c.ID] = c.Title
	return nil
}

func (i *fakeIndex) Delete(ctx context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.indexed, id)
	i.deleted = append(i.deleted, id)
	return nil
}

func (i *fakeIndex) Search(ctx context.Context, query string, size int) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return nil, i.err
	}
	return i.hits, nil
}

func (f *fixture) setUser(id string, edit func(u *model.User)) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u := f.db.users[id]
	edit(&u)
	f.db.users[id] = u
}
