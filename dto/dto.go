package dto

import (
	"time"

	"github.com/google/uuid"

	"course-api/entities"
)

type CourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Order       *int   `json:"order"`
}

type LessonRequest struct {
	Title          string                `json:"title" validate:"required"`
	Description    string                `json:"description"`
	YoutubeVideoID string                `json:"youtube_video_id" validate:"required"`
	DownloadFiles  []DownloadFileRequest `json:"download_files" validate:"dive"`
	Order          *int                  `json:"order"`
}

type DownloadFileRequest struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

type ReorderRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginResponse struct {
	Token    string  `json:"token"`
	Session  Session `json:"session"`
	Redirect string  `json:"redirect"`
}

// CourseDetailResponse backs both the course detail view (first lesson
// selected) and the per-lesson playback view. Lesson is nil for a course
// with no lessons yet.
type CourseDetailResponse struct {
	Course   entities.Course   `json:"course"`
	Lessons  []entities.Lesson `json:"lessons"`
	Lesson   *entities.Lesson  `json:"lesson,omitempty"`
	Previous *entities.Lesson  `json:"previous,omitempty"`
	Next     *entities.Lesson  `json:"next,omitempty"`
}

type UploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// InvalidationMessage fans cache evictions out to every running instance.
type InvalidationMessage struct {
	Keys []string `json:"keys"`
}

func (r LessonRequest) Files() entities.DownloadFiles {
	files := make(entities.DownloadFiles, 0, len(r.DownloadFiles))
	for _, f := range r.DownloadFiles {
		files = append(files, entities.DownloadFile{Name: f.Name, URL: f.URL})
	}
	return files
}
