package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"course-api/dto"
	"course-api/entities"
	"course-api/pkg/rabbitmq"
	"course-api/repository"
	"course-api/service"
)

// memCache is a map-backed stand-in for the redis list cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memCache) Invalidate(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// newCatalogRouter wires the public catalog routes over an in-memory sqlite
// store, the same shape server.RunHttp builds.
func newCatalogRouter(t *testing.T) (*gin.Engine, repository.CatalogRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entities.Course{}, &entities.Lesson{}, &entities.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := repository.NewGormRepo(db)
	listCache := &memCache{data: map[string][]byte{}}
	catalog := service.NewCatalogService(repo, listCache)
	admin := service.NewAdminService(repo, catalog, listCache, rabbitmq.NoopPublisher{}, nil)

	h := &Handler{Catalog: catalog, Admin: admin}

	router := gin.New()
	api := router.Group("/api/v1")
	api.GET("/courses", h.ListCourses)
	api.GET("/courses/:courseId", h.CourseDetail)
	api.GET("/courses/:courseId/lessons/:lessonId", h.CourseDetail)
	return router, repo
}

func seedCourse(t *testing.T, repo repository.CatalogRepository, title string, lessonTitles ...string) (entities.Course, []entities.Lesson) {
	t.Helper()
	ctx := context.Background()

	order := 1
	c := entities.Course{Title: title, Order: &order}
	if err := repo.CreateCourse(ctx, &c); err != nil {
		t.Fatalf("seed course: %v", err)
	}

	lessons := make([]entities.Lesson, 0, len(lessonTitles))
	for i, lt := range lessonTitles {
		o := i + 1
		l := entities.Lesson{CourseID: c.ID, Title: lt, YoutubeVideoID: "abc123def45", Order: &o}
		if err := repo.CreateLesson(ctx, &l); err != nil {
			t.Fatalf("seed lesson %q: %v", lt, err)
		}
		lessons = append(lessons, l)
	}
	return c, lessons
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestCourseDetailSelectsFirstLesson(t *testing.T) {
	router, repo := newCatalogRouter(t)
	c, lessons := seedCourse(t, repo, "go basics", "hello", "types")

	rec := doGet(router, "/api/v1/courses/"+c.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp dto.CourseDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Lesson == nil || resp.Lesson.ID != lessons[0].ID {
		t.Fatalf("selected lesson = %v, want first lesson", resp.Lesson)
	}
	if resp.Previous != nil {
		t.Fatalf("previous = %v, want nil for first lesson", resp.Previous)
	}
	if resp.Next == nil || resp.Next.ID != lessons[1].ID {
		t.Fatalf("next = %v, want second lesson", resp.Next)
	}
}

func TestCourseDetailPlaybackNavigation(t *testing.T) {
	router, repo := newCatalogRouter(t)
	c, lessons := seedCourse(t, repo, "go basics", "hello", "types", "funcs")

	path := fmt.Sprintf("/api/v1/courses/%s/lessons/%s", c.ID, lessons[2].ID)
	rec := doGet(router, path)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp dto.CourseDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Lesson == nil || resp.Lesson.ID != lessons[2].ID {
		t.Fatalf("selected lesson = %v, want last lesson", resp.Lesson)
	}
	if resp.Previous == nil || resp.Previous.ID != lessons[1].ID {
		t.Fatalf("previous = %v, want middle lesson", resp.Previous)
	}
	if resp.Next != nil {
		t.Fatalf("next = %v, want nil at the end of the course", resp.Next)
	}
}

func TestCourseDetailUnknownLessonRedirectsToFirst(t *testing.T) {
	router, repo := newCatalogRouter(t)
	c, lessons := seedCourse(t, repo, "go basics", "hello", "types")

	path := fmt.Sprintf("/api/v1/courses/%s/lessons/%s", c.ID, uuid.New())
	rec := doGet(router, path)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := fmt.Sprintf("/courses/%s/%s", c.ID, lessons[0].ID)
	if body["redirect"] != want {
		t.Fatalf("redirect = %q, want %q", body["redirect"], want)
	}
}

func TestCourseDetailMalformedLessonIDRedirectsToCourse(t *testing.T) {
	router, repo := newCatalogRouter(t)
	c, _ := seedCourse(t, repo, "go basics", "hello")

	rec := doGet(router, fmt.Sprintf("/api/v1/courses/%s/lessons/not-a-uuid", c.ID))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := "/courses/" + c.ID.String(); body["redirect"] != want {
		t.Fatalf("redirect = %q, want %q", body["redirect"], want)
	}
}

func TestCourseDetailNoLessons(t *testing.T) {
	router, repo := newCatalogRouter(t)
	c, _ := seedCourse(t, repo, "empty course")

	rec := doGet(router, "/api/v1/courses/"+c.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp dto.CourseDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Lesson != nil {
		t.Fatalf("lesson = %v, want nil for a course without lessons", resp.Lesson)
	}
	if len(resp.Lessons) != 0 {
		t.Fatalf("lessons = %v, want empty", resp.Lessons)
	}
}

func TestCourseDetailUnknownCourse(t *testing.T) {
	router, _ := newCatalogRouter(t)

	rec := doGet(router, "/api/v1/courses/"+uuid.NewString())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListCoursesEmptyCatalog(t *testing.T) {
	router, _ := newCatalogRouter(t)

	rec := doGet(router, "/api/v1/courses")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Courses []entities.Course `json:"courses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Courses) != 0 {
		t.Fatalf("courses = %v, want empty", body.Courses)
	}
}
