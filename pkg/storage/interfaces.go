package storage

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/coursebook/pkg/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a unique field (user email, course name) is taken
	ErrConflict = errors.New("record already exists")

	// ErrVersionConflict is returned when a conditional update lost a race
	ErrVersionConflict = errors.New("version conflict")
)

// UserReader provides read operations for users
type UserReader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserWriter provides write operations for users
type UserWriter interface {
	// CreateUser assigns an ID when empty; ErrConflict on duplicate email
	CreateUser(ctx context.Context, user *models.User) error
	// UpdateUser replaces every mutable field; ErrNotFound when absent
	UpdateUser(ctx context.Context, user *models.User) error
}

// UserStore combines user reads and writes
type UserStore interface {
	UserReader
	UserWriter
}

// CourseFilter narrows ListCourses. Price bounds are inclusive.
type CourseFilter struct {
	ActiveOnly bool
	MinPrice   *float64
	MaxPrice   *float64
}

// Matches reports whether course passes the filter
func (f CourseFilter) Matches(course *models.Course) bool {
	if f.ActiveOnly && !course.IsActive {
		return false
	}
	if f.MinPrice != nil && course.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && course.Price > *f.MaxPrice {
		return false
	}
	return true
}

// CourseReader provides read operations for courses
type CourseReader interface {
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	GetCourseByName(ctx context.Context, name string) (*models.Course, error)
	// ListCourses returns matching courses ordered by creation time
	ListCourses(ctx context.Context, filter CourseFilter) ([]*models.Course, error)
}

// CourseWriter provides write operations for courses
type CourseWriter interface {
	// CreateCourse assigns an ID when empty; ErrConflict on duplicate name
	CreateCourse(ctx context.Context, course *models.Course) error
	UpdateCourse(ctx context.Context, course *models.Course) error
}

// CourseStore combines course reads and writes
type CourseStore interface {
	CourseReader
	CourseWriter
}

// EnrollmentReader provides read operations for enrollments
type EnrollmentReader interface {
	GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error)
	ListEnrollmentsByUser(ctx context.Context, userID string) ([]*models.Enrollment, error)
}

// EnrollmentWriter provides write operations for enrollments
type EnrollmentWriter interface {
	// CreateEnrollment assigns an ID when empty and starts Version at 1
	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	// UpdateEnrollment writes enrollment only if the stored Version equals
	// enrollment.Version, then increments enrollment.Version. A stale
	// version yields ErrVersionConflict.
	UpdateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
}

// EnrollmentStore combines enrollment reads and writes
type EnrollmentStore interface {
	EnrollmentReader
	EnrollmentWriter
}

// HealthChecker reports backend health
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Store is the full persistence collaborator used by the API
type Store interface {
	UserStore
	CourseStore
	EnrollmentStore
	HealthChecker

	// Backend names the implementation, used as a metrics label
	Backend() string
	Close() error
}

// Config for storage backend
type Config struct {
	Type string `yaml:"type"` // "memory" or "postgres"

	// PostgreSQL config
	PostgresURL         string        `yaml:"postgres_url"`
	PostgresMaxConns    int           `yaml:"postgres_max_conns"`
	PostgresMinConns    int           `yaml:"postgres_min_conns"`
	PostgresTimeout     time.Duration `yaml:"postgres_timeout"`
	PostgresMaxLifetime time.Duration `yaml:"postgres_max_lifetime"`
	PostgresMaxIdleTime time.Duration `yaml:"postgres_max_idle_time"`
	RunMigrations       bool          `yaml:"run_migrations"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:                "memory",
		PostgresMaxConns:    20,
		PostgresMinConns:    2,
		PostgresTimeout:     10 * time.Second,
		PostgresMaxLifetime: time.Hour,
		PostgresMaxIdleTime: 10 * time.Minute,
		RunMigrations:       true,
	}
}
