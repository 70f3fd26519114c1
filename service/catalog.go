package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"course-api/entities"
	"course-api/pkg/cache"
	"course-api/repository"
)

// ListCache is the slice of the redis cache the catalog needs; the admin
// service shares it for invalidation.
type ListCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CatalogService is the read model: cache-aside lookups over the repository,
// returning lists in display order.
type CatalogService struct {
	repo  repository.CatalogRepository
	cache ListCache
}

func NewCatalogService(repo repository.CatalogRepository, cache ListCache) *CatalogService {
	return &CatalogService{repo: repo, cache: cache}
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]entities.Course, error) {
	var courses []entities.Course
	hit, err := s.cache.GetJSON(ctx, cache.CoursesKey, &courses)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("course list cache read failed")
	}
	if hit {
		return courses, nil
	}

	courses, err = s.repo.ListCourses(ctx)
	if err != nil {
		return nil, &QueryError{Op: "courses", Err: err}
	}

	if err := s.cache.SetJSON(ctx, cache.CoursesKey, courses); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("course list cache write failed")
	}
	return courses, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, id uuid.UUID) (*entities.Course, error) {
	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, &QueryError{Op: "course", Err: err}
	}
	return course, nil
}

// ListLessons returns the full ordered lesson list of a course; a course
// with no lessons yields an empty slice.
func (s *CatalogService) ListLessons(ctx context.Context, courseID uuid.UUID) ([]entities.Lesson, error) {
	key := cache.LessonsKey(courseID.String())

	var lessons []entities.Lesson
	hit, err := s.cache.GetJSON(ctx, key, &lessons)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("lesson list cache read failed")
	}
	if hit {
		return lessons, nil
	}

	lessons, err = s.repo.ListLessons(ctx, courseID)
	if err != nil {
		return nil, &QueryError{Op: "lessons", Err: err}
	}

	if err := s.cache.SetJSON(ctx, key, lessons); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("lesson list cache write failed")
	}
	return lessons, nil
}

func (s *CatalogService) GetLesson(ctx context.Context, id uuid.UUID) (*entities.Lesson, error) {
	lesson, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, &QueryError{Op: "lesson", Err: err}
	}
	return lesson, nil
}
