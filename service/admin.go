package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"course-api/constant"
	"course-api/dto"
	"course-api/entities"
	"course-api/pkg/cache"
	"course-api/pkg/rabbitmq"
	"course-api/repository"
)

// ImageStore removes a previously stored course image when it is replaced
// or its course is deleted. External image URLs are left alone.
type ImageStore interface {
	RemoveByURL(ctx context.Context, url string) error
}

// AdminService is the catalog write model. Every mutation declares the cache
// keys it invalidates, drops them locally and broadcasts them to the other
// instances; reads after a write refetch from the store.
type AdminService struct {
	repo      repository.CatalogRepository
	catalog   *CatalogService
	cache     ListCache
	publisher rabbitmq.Publisher
	images    ImageStore
}

func NewAdminService(
	repo repository.CatalogRepository,
	catalog *CatalogService,
	listCache ListCache,
	publisher rabbitmq.Publisher,
	images ImageStore,
) *AdminService {
	return &AdminService{
		repo:      repo,
		catalog:   catalog,
		cache:     listCache,
		publisher: publisher,
		images:    images,
	}
}

func (s *AdminService) CreateCourse(ctx context.Context, req dto.CourseRequest) (*entities.Course, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	order := req.Order
	if order == nil {
		max, err := s.repo.MaxCourseOrder(ctx)
		if err != nil {
			return nil, &QueryError{Op: "max course order", Err: err}
		}
		next := max + 1
		order = &next
	}

	course := &entities.Course{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Order:       order,
	}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return nil, &WriteError{Op: "create course", Err: err}
	}

	s.invalidate(ctx, cache.CoursesKey)
	return course, nil
}

func (s *AdminService) UpdateCourse(ctx context.Context, id uuid.UUID, req dto.CourseRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	existing, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return &QueryError{Op: "course", Err: err}
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"image_url":   req.ImageURL,
		"order":       req.Order,
	}
	if err := s.repo.UpdateCourse(ctx, id, updates); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return &WriteError{Op: "update course", Err: err}
	}

	if existing.ImageURL != "" && existing.ImageURL != req.ImageURL {
		s.removeImage(ctx, existing.ImageURL)
	}

	s.invalidate(ctx, cache.CoursesKey)
	return nil
}

// DeleteCourse cascades to the course's lessons at the store, so both the
// course list and that course's lesson list go stale.
func (s *AdminService) DeleteCourse(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	existing, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return &QueryError{Op: "course", Err: err}
	}

	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return &WriteError{Op: "delete course", Err: err}
	}

	if existing.ImageURL != "" {
		s.removeImage(ctx, existing.ImageURL)
	}

	s.invalidate(ctx, cache.CoursesKey, cache.LessonsKey(id.String()))
	return nil
}

// ReorderCourse swaps a course's order value with its neighbor in the given
// direction. Already first (up) or last (down) is a no-op with no store
// call. The swap itself runs in one transaction, but two admins reordering
// at once can still interleave; best effort by contract.
func (s *AdminService) ReorderCourse(ctx context.Context, id uuid.UUID, direction constant.MoveDirection) error {
	courses, err := s.catalog.ListCourses(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i := range courses {
		if courses[i].ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrNotFound
	}

	var neighbor int
	switch direction {
	case constant.MoveUp:
		if index == 0 {
			return nil
		}
		neighbor = index - 1
	case constant.MoveDown:
		if index == len(courses)-1 {
			return nil
		}
		neighbor = index + 1
	default:
		return dto.ValidationErrors{{Field: "direction", Message: "must be one of: up down"}}
	}

	if err := s.repo.SwapCourseOrders(ctx, courses[index], courses[neighbor]); err != nil {
		return &WriteError{Op: "reorder course", Err: err}
	}

	s.invalidate(ctx, cache.CoursesKey)
	return nil
}

func (s *AdminService) CreateLesson(ctx context.Context, courseID uuid.UUID, req dto.LessonRequest) (*entities.Lesson, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, &QueryError{Op: "course", Err: err}
	}

	order := req.Order
	if order == nil {
		max, err := s.repo.MaxLessonOrder(ctx, courseID)
		if err != nil {
			return nil, &QueryError{Op: "max lesson order", Err: err}
		}
		next := max + 1
		order = &next
	}

	lesson := &entities.Lesson{
		CourseID:       courseID,
		Title:          req.Title,
		Description:    req.Description,
		YoutubeVideoID: req.YoutubeVideoID,
		DownloadFiles:  req.Files(),
		Order:          order,
	}
	if err := s.repo.CreateLesson(ctx, lesson); err != nil {
		return nil, &WriteError{Op: "create lesson", Err: err}
	}

	s.invalidate(ctx, cache.LessonsKey(courseID.String()))
	return lesson, nil
}

func (s *AdminService) UpdateLesson(ctx context.Context, id uuid.UUID, req dto.LessonRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	existing, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return &QueryError{Op: "lesson", Err: err}
	}

	updates := map[string]interface{}{
		"title":            req.Title,
		"description":      req.Description,
		"youtube_video_id": req.YoutubeVideoID,
		"download_files":   req.Files(),
		"order":            req.Order,
	}
	if err := s.repo.UpdateLesson(ctx, id, updates); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return &WriteError{Op: "update lesson", Err: err}
	}

	s.invalidate(ctx, cache.LessonsKey(existing.CourseID.String()))
	return nil
}

func (s *AdminService) DeleteLesson(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	existing, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return &QueryError{Op: "lesson", Err: err}
	}

	if err := s.repo.DeleteLesson(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return &WriteError{Op: "delete lesson", Err: err}
	}

	s.invalidate(ctx, cache.LessonsKey(existing.CourseID.String()))
	return nil
}

// invalidate drops the declared keys locally and fans them out. Failures
// are logged, not returned: the write already committed and readers fall
// back to the store when a stale key expires.
func (s *AdminService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
	if err := s.publisher.PublishInvalidation(ctx, keys...); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Strs("keys", keys).Msg("invalidation broadcast failed")
	}
}

func (s *AdminService) removeImage(ctx context.Context, url string) {
	if s.images == nil {
		return
	}
	if err := s.images.RemoveByURL(ctx, url); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("failed to remove replaced course image")
	}
}
