package storage

import (
	"context"
	"time"

	"github.com/platinummonkey/coursebook/pkg/models"
)

// OperationRecorder receives one call per storage operation
type OperationRecorder interface {
	RecordStorageOperation(operation, backend string, duration time.Duration, err error)
}

// InstrumentedStore decorates a Store with operation metrics
type InstrumentedStore struct {
	next     Store
	recorder OperationRecorder
}

// NewInstrumentedStore wraps next; a nil recorder returns next unchanged
func NewInstrumentedStore(next Store, recorder OperationRecorder) Store {
	if recorder == nil {
		return next
	}
	return &InstrumentedStore{next: next, recorder: recorder}
}

func (s *InstrumentedStore) observe(operation string, start time.Time, err error) {
	s.recorder.RecordStorageOperation(operation, s.next.Backend(), time.Since(start), err)
}

func (s *InstrumentedStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	start := time.Now()
	user, err := s.next.GetUser(ctx, id)
	s.observe("get_user", start, err)
	return user, err
}

func (s *InstrumentedStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	start := time.Now()
	user, err := s.next.GetUserByEmail(ctx, email)
	s.observe("get_user_by_email", start, err)
	return user, err
}

func (s *InstrumentedStore) CreateUser(ctx context.Context, user *models.User) error {
	start := time.Now()
	err := s.next.CreateUser(ctx, user)
	s.observe("create_user", start, err)
	return err
}

func (s *InstrumentedStore) UpdateUser(ctx context.Context, user *models.User) error {
	start := time.Now()
	err := s.next.UpdateUser(ctx, user)
	s.observe("update_user", start, err)
	return err
}

func (s *InstrumentedStore) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	start := time.Now()
	course, err := s.next.GetCourse(ctx, id)
	s.observe("get_course", start, err)
	return course, err
}

func (s *InstrumentedStore) GetCourseByName(ctx context.Context, name string) (*models.Course, error) {
	start := time.Now()
	course, err := s.next.GetCourseByName(ctx, name)
	s.observe("get_course_by_name", start, err)
	return course, err
}

func (s *InstrumentedStore) ListCourses(ctx context.Context, filter CourseFilter) ([]*models.Course, error) {
	start := time.Now()
	courses, err := s.next.ListCourses(ctx, filter)
	s.observe("list_courses", start, err)
	return courses, err
}

func (s *InstrumentedStore) CreateCourse(ctx context.Context, course *models.Course) error {
	start := time.Now()
	err := s.next.CreateCourse(ctx, course)
	s.observe("create_course", start, err)
	return err
}

func (s *InstrumentedStore) UpdateCourse(ctx context.Context, course *models.Course) error {
	start := time.Now()
	err := s.next.UpdateCourse(ctx, course)
	s.observe("update_course", start, err)
	return err
}

func (s *InstrumentedStore) GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	start := time.Now()
	enrollment, err := s.next.GetEnrollment(ctx, id)
	s.observe("get_enrollment", start, err)
	return enrollment, err
}

func (s *InstrumentedStore) ListEnrollmentsByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	start := time.Now()
	enrollments, err := s.next.ListEnrollmentsByUser(ctx, userID)
	s.observe("list_enrollments_by_user", start, err)
	return enrollments, err
}

func (s *InstrumentedStore) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	start := time.Now()
	err := s.next.CreateEnrollment(ctx, enrollment)
	s.observe("create_enrollment", start, err)
	return err
}

func (s *InstrumentedStore) UpdateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	start := time.Now()
	err := s.next.UpdateEnrollment(ctx, enrollment)
	s.observe("update_enrollment", start, err)
	return err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *InstrumentedStore) Backend() string {
	return s.next.Backend()
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}
