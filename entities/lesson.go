package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DownloadFile is one attachment offered on a lesson's playback view.
type DownloadFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DownloadFiles is stored as a single JSON column. Value and Scan are the
// only serialize/deserialize pair for the column.
type DownloadFiles []DownloadFile

func (f DownloadFiles) Value() (driver.Value, error) {
	if f == nil {
		f = DownloadFiles{}
	}
	return json.Marshal(f)
}

func (f *DownloadFiles) Scan(value interface{}) error {
	if value == nil {
		*f = DownloadFiles{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported download_files column type %T", value)
	}

	if len(data) == 0 {
		*f = DownloadFiles{}
		return nil
	}
	return json.Unmarshal(data, f)
}

type Lesson struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"course_id"`
	Title          string        `gorm:"not null" json:"title"`
	Description    string        `json:"description"`
	YoutubeVideoID string        `gorm:"not null" json:"youtube_video_id"`
	DownloadFiles  DownloadFiles `gorm:"type:jsonb" json:"download_files"`
	Order          *int          `gorm:"column:order" json:"order"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
