package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"course-api/entities"
)

var ErrRecordNotFound = gorm.ErrRecordNotFound

// displayOrder is the one sorting rule for the whole catalog: explicit order
// first, rows without an order last, creation time breaking ties.
const displayOrder = `"order" ASC NULLS LAST, created_at ASC`

type CatalogRepository interface {
	GetDB() *gorm.DB

	ListCourses(ctx context.Context) ([]entities.Course, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*entities.Course, error)
	CreateCourse(ctx context.Context, course *entities.Course) error
	UpdateCourse(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	MaxCourseOrder(ctx context.Context) (int, error)
	SwapCourseOrders(ctx context.Context, a, b entities.Course) error

	ListLessons(ctx context.Context, courseID uuid.UUID) ([]entities.Lesson, error)
	GetLesson(ctx context.Context, id uuid.UUID) (*entities.Lesson, error)
	CreateLesson(ctx context.Context, lesson *entities.Lesson) error
	UpdateLesson(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteLesson(ctx context.Context, id uuid.UUID) error
	MaxLessonOrder(ctx context.Context, courseID uuid.UUID) (int, error)

	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	CreateUser(ctx context.Context, user *entities.User) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) CatalogRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	return &repo{
		db: gormDB,
	}
}

// NewGormRepo wraps an already-open gorm handle. Tests use it with sqlite.
func NewGormRepo(db *gorm.DB) CatalogRepository {
	return &repo{db: db}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) ListCourses(ctx context.Context) ([]entities.Course, error) {
	var courses []entities.Course
	err := r.db.WithContext(ctx).Order(displayOrder).Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repo) GetCourse(ctx context.Context, id uuid.UUID) (*entities.Course, error) {
	course := &entities.Course{}
	err := r.db.WithContext(ctx).First(course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *repo) CreateCourse(ctx context.Context, course *entities.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *repo) UpdateCourse(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&entities.Course{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entities.Course{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) MaxCourseOrder(ctx context.Context) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).Model(&entities.Course{}).
		Select(`MAX(COALESCE("order", 0))`).Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}

// SwapCourseOrders writes both order values in one transaction so a failed
// second update cannot leave the swap half-applied.
func (r *repo) SwapCourseOrders(ctx context.Context, a, b entities.Course) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Course{}).Where("id = ?", a.ID).
			Update("order", b.Order).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Course{}).Where("id = ?", b.ID).
			Update("order", a.Order).Error
	})
}

func (r *repo) ListLessons(ctx context.Context, courseID uuid.UUID) ([]entities.Lesson, error) {
	lessons := []entities.Lesson{}
	err := r.db.WithContext(ctx).Where("course_id = ?", courseID).
		Order(displayOrder).Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *repo) GetLesson(ctx context.Context, id uuid.UUID) (*entities.Lesson, error) {
	lesson := &entities.Lesson{}
	err := r.db.WithContext(ctx).First(lesson, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

func (r *repo) CreateLesson(ctx context.Context, lesson *entities.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

// UpdateLesson patches by id. course_id never appears in updates; a lesson
// stays with the course it was created under.
func (r *repo) UpdateLesson(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	delete(updates, "course_id")
	res := r.db.WithContext(ctx).Model(&entities.Lesson{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entities.Lesson{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) MaxLessonOrder(ctx context.Context, courseID uuid.UUID) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).Model(&entities.Lesson{}).
		Where("course_id = ?", courseID).
		Select(`MAX(COALESCE("order", 0))`).Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}

func (r *repo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	user := &entities.User{}
	err := r.db.WithContext(ctx).First(user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repo) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
