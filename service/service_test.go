package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"course-api/entities"
)

// fakeRepo keeps the catalog in memory and counts writes so tests can
// assert which store calls a service operation issued.
type fakeRepo struct {
	courses []entities.Course
	lessons []entities.Lesson
	users   []entities.User

	courseCreates int
	lessonCreates int
	courseDeletes int
	lessonDeletes int
	swapCalls     int
}

func (f *fakeRepo) GetDB() *gorm.DB { return nil }

func (f *fakeRepo) ListCourses(ctx context.Context) ([]entities.Course, error) {
	out := make([]entities.Course, len(f.courses))
	copy(out, f.courses)
	sort.SliceStable(out, func(i, j int) bool {
		return effectiveOrder(out[i].Order) < effectiveOrder(out[j].Order)
	})
	return out, nil
}

func effectiveOrder(o *int) int {
	if o == nil {
		return 1 << 30
	}
	return *o
}

func (f *fakeRepo) GetCourse(ctx context.Context, id uuid.UUID) (*entities.Course, error) {
	for i := range f.courses {
		if f.courses[i].ID == id {
			c := f.courses[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateCourse(ctx context.Context, course *entities.Course) error {
	f.courseCreates++
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	f.courses = append(f.courses, *course)
	return nil
}

func (f *fakeRepo) UpdateCourse(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	for i := range f.courses {
		if f.courses[i].ID == id {
			if title, ok := updates["title"].(string); ok {
				f.courses[i].Title = title
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	f.courseDeletes++
	for i := range f.courses {
		if f.courses[i].ID == id {
			f.courses = append(f.courses[:i], f.courses[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) MaxCourseOrder(ctx context.Context) (int, error) {
	max := 0
	for _, c := range f.courses {
		if c.Order != nil && *c.Order > max {
			max = *c.Order
		}
	}
	return max, nil
}

func (f *fakeRepo) SwapCourseOrders(ctx context.Context, a, b entities.Course) error {
	f.swapCalls++
	for i := range f.courses {
		switch f.courses[i].ID {
		case a.ID:
			f.courses[i].Order = b.Order
		case b.ID:
			f.courses[i].Order = a.Order
		}
	}
	return nil
}

func (f *fakeRepo) ListLessons(ctx context.Context, courseID uuid.UUID) ([]entities.Lesson, error) {
	out := []entities.Lesson{}
	for _, l := range f.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return effectiveOrder(out[i].Order) < effectiveOrder(out[j].Order)
	})
	return out, nil
}

func (f *fakeRepo) GetLesson(ctx context.Context, id uuid.UUID) (*entities.Lesson, error) {
	for i := range f.lessons {
		if f.lessons[i].ID == id {
			l := f.lessons[i]
			return &l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateLesson(ctx context.Context, lesson *entities.Lesson) error {
	f.lessonCreates++
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	f.lessons = append(f.lessons, *lesson)
	return nil
}

func (f *fakeRepo) UpdateLesson(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	for i := range f.lessons {
		if f.lessons[i].ID == id {
			if title, ok := updates["title"].(string); ok {
				f.lessons[i].Title = title
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	f.lessonDeletes++
	for i := range f.lessons {
		if f.lessons[i].ID == id {
			f.lessons = append(f.lessons[:i], f.lessons[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) MaxLessonOrder(ctx context.Context, courseID uuid.UUID) (int, error) {
	max := 0
	for _, l := range f.lessons {
		if l.CourseID == courseID && l.Order != nil && *l.Order > max {
			max = *l.Order
		}
	}
	return max, nil
}

func (f *fakeRepo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users = append(f.users, *user)
	return nil
}

// fakeCache records set and invalidated keys.
type fakeCache struct {
	data        map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	f.invalidated = append(f.invalidated, keys...)
	return nil
}

// fakePublisher records broadcast invalidations.
type fakePublisher struct {
	published [][]string
}

func (f *fakePublisher) PublishInvalidation(ctx context.Context, keys ...string) error {
	f.published = append(f.published, keys)
	return nil
}

// fakeDenylist backs sign-out tests.
type fakeDenylist struct {
	entries map[string]struct{}
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{entries: map[string]struct{}{}}
}

func (f *fakeDenylist) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	f.entries[key] = struct{}{}
	return nil
}

func (f *fakeDenylist) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.entries[key]
	return ok, nil
}

func intPtr(v int) *int { return &v }

func course(title string, order *int) entities.Course {
	return entities.Course{ID: uuid.New(), Title: title, Order: order}
}
