// Package memory implements storage.Store with process-local maps.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/storage"
)

// Store keeps every record in memory. Records are copied on the way in and
// out so callers never share state with the store.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	courses     map[string]*models.Course
	enrollments map[string]*models.Enrollment
	now         func() time.Time
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		courses:     make(map[string]*models.Course),
		enrollments: make(map[string]*models.Enrollment),
		now:         time.Now,
	}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Backend() string { return "memory" }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *user
	return &c, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user := s.findUserByEmail(email); user != nil {
		c := *user
		return &c, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) findUserByEmail(email string) *models.User {
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmail(user.Email) != nil {
		return fmt.Errorf("email %q: %w", user.Email, storage.ErrConflict)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %q: %w", user.ID, storage.ErrConflict)
	}

	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	if other := s.findUserByEmail(user.Email); other != nil && other.ID != user.ID {
		return fmt.Errorf("email %q: %w", user.Email, storage.ErrConflict)
	}

	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *course
	return &c, nil
}

func (s *Store) GetCourseByName(ctx context.Context, name string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if course := s.findCourseByName(name); course != nil {
		c := *course
		return &c, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) findCourseByName(name string) *models.Course {
	for _, course := range s.courses {
		if course.Name == name {
			return course
		}
	}
	return nil
}

func (s *Store) ListCourses(ctx context.Context, filter storage.CourseFilter) ([]*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]*models.Course, 0, len(s.courses))
	for _, course := range s.courses {
		if filter.Matches(course) {
			c := *course
			courses = append(courses, &c)
		}
	}

	sort.Slice(courses, func(i, j int) bool {
		if courses[i].DateCreated.Equal(courses[j].DateCreated) {
			return courses[i].ID < courses[j].ID
		}
		return courses[i].DateCreated.Before(courses[j].DateCreated)
	})
	return courses, nil
}

func (s *Store) CreateCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findCourseByName(course.Name) != nil {
		return fmt.Errorf("course %q: %w", course.Name, storage.ErrConflict)
	}
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.DateCreated.IsZero() {
		course.DateCreated = s.now().UTC()
	}

	c := *course
	s.courses[course.ID] = &c
	return nil
}

func (s *Store) UpdateCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[course.ID]; !ok {
		return storage.ErrNotFound
	}
	if other := s.findCourseByName(course.Name); other != nil && other.ID != course.ID {
		return fmt.Errorf("course %q: %w", course.Name, storage.ErrConflict)
	}

	c := *course
	s.courses[course.ID] = &c
	return nil
}

func (s *Store) GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enrollment, ok := s.enrollments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return enrollment.Clone(), nil
}

func (s *Store) ListEnrollmentsByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var enrollments []*models.Enrollment
	for _, enrollment := range s.enrollments {
		if enrollment.UserID == userID {
			enrollments = append(enrollments, enrollment.Clone())
		}
	}

	sort.Slice(enrollments, func(i, j int) bool {
		return enrollments[i].EnrolledOn.Before(enrollments[j].EnrolledOn)
	})
	return enrollments, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if _, ok := s.enrollments[enrollment.ID]; ok {
		return fmt.Errorf("enrollment %q: %w", enrollment.ID, storage.ErrConflict)
	}
	if enrollment.EnrolledOn.IsZero() {
		enrollment.EnrolledOn = s.now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.DefaultEnrollmentStatus
	}
	if enrollment.EnrolledCourses == nil {
		enrollment.EnrolledCourses = []models.EnrolledCourse{}
	}
	enrollment.Version = 1

	s.enrollments[enrollment.ID] = enrollment.Clone()
	return nil
}

func (s *Store) UpdateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.enrollments[enrollment.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if current.Version != enrollment.Version {
		return fmt.Errorf("enrollment %q at version %d, have %d: %w",
			enrollment.ID, current.Version, enrollment.Version, storage.ErrVersionConflict)
	}

	enrollment.Version++
	s.enrollments[enrollment.ID] = enrollment.Clone()
	return nil
}
