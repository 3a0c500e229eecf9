// Package courses implements the course catalog operations.
package courses

import (
	"context"
	"errors"
	"strings"

	"github.com/platinummonkey/coursebook/pkg/apperr"
	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/observability"
	"github.com/platinummonkey/coursebook/pkg/storage"
)

const (
	msgCourseExists   = "Course already exists"
	msgCourseNotFound = "Course not found"
	msgPriceRequired  = "Both minPrice and maxPrice are required in the request body."
)

// NewCourse is the input of AddCourse
type NewCourse struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

// CourseUpdate holds the fields to change; nil fields are left as they are
type CourseUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

// PriceRange is the input of SearchByPriceRange. Both bounds are required.
type PriceRange struct {
	MinPrice *float64 `json:"minPrice"`
	MaxPrice *float64 `json:"maxPrice"`
}

// Service runs course operations against a CourseStore
type Service struct {
	store storage.CourseStore
}

// NewService creates a course service
func NewService(store storage.CourseStore) *Service {
	return &Service{store: store}
}

// AddCourse creates an active course. A course with the same name yields Conflict.
func (s *Service) AddCourse(ctx context.Context, in NewCourse) (*models.Course, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, apperr.NewBadRequest("Course name is required")
	case strings.TrimSpace(in.Description) == "":
		return nil, apperr.NewBadRequest("Course description is required")
	case in.Price == nil:
		return nil, apperr.NewBadRequest("Course price is required")
	case *in.Price < 0:
		return nil, apperr.NewBadRequest("Price must not be negative")
	}

	existing, err := s.store.GetCourseByName(ctx, in.Name)
	switch {
	case err == nil && existing != nil:
		return nil, apperr.NewConflict(msgCourseExists)
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return nil, internal(ctx, "Error finding the course", err)
	}

	course := &models.Course{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		IsActive:    true,
	}
	if err := s.store.CreateCourse(ctx, course); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.NewConflict(msgCourseExists)
		}
		return nil, internal(ctx, "Failed to save the course", err)
	}
	return course, nil
}

// ListAll returns every course, archived ones included
func (s *Service) ListAll(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.store.ListCourses(ctx, storage.CourseFilter{})
	if err != nil {
		return nil, internal(ctx, "Error finding courses", err)
	}
	return courses, nil
}

// ListActive returns the courses open for enrollment
func (s *Service) ListActive(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.store.ListCourses(ctx, storage.CourseFilter{ActiveOnly: true})
	if err != nil {
		return nil, internal(ctx, "Error in finding active courses", err)
	}
	return courses, nil
}

// GetCourse returns one course by id
func (s *Service) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return nil, notFoundOr(ctx, err, "Failed to fetch course")
	}
	return course, nil
}

// UpdateCourse applies the non-nil fields of update to the course
func (s *Service) UpdateCourse(ctx context.Context, id string, update CourseUpdate) (*models.Course, error) {
	if update.Price != nil && *update.Price < 0 {
		return nil, apperr.NewBadRequest("Price must not be negative")
	}

	return s.mutate(ctx, id, "Error in updating a course.", func(course *models.Course) {
		if update.Name != nil {
			course.Name = *update.Name
		}
		if update.Description != nil {
			course.Description = *update.Description
		}
		if update.Price != nil {
			course.Price = *update.Price
		}
	})
}

// ArchiveCourse deactivates a course
func (s *Service) ArchiveCourse(ctx context.Context, id string) (*models.Course, error) {
	return s.mutate(ctx, id, "Failed to archive course", func(course *models.Course) {
		course.IsActive = false
	})
}

// ActivateCourse reactivates an archived course
func (s *Service) ActivateCourse(ctx context.Context, id string) (*models.Course, error) {
	return s.mutate(ctx, id, "Failed to activating a course", func(course *models.Course) {
		course.IsActive = true
	})
}

func (s *Service) mutate(ctx context.Context, id, failure string, apply func(*models.Course)) (*models.Course, error) {
	course, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return nil, notFoundOr(ctx, err, failure)
	}

	apply(course)

	if err := s.store.UpdateCourse(ctx, course); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.NewConflict(msgCourseExists)
		}
		return nil, notFoundOr(ctx, err, failure)
	}
	return course, nil
}

// SearchByPriceRange returns every course priced within [min, max].
// An inverted range is not an error; it matches nothing.
func (s *Service) SearchByPriceRange(ctx context.Context, in PriceRange) ([]*models.Course, error) {
	if in.MinPrice == nil || in.MaxPrice == nil {
		return nil, apperr.NewBadRequest(msgPriceRequired)
	}

	courses, err := s.store.ListCourses(ctx, storage.CourseFilter{
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
	})
	if err != nil {
		return nil, internal(ctx, "Internal Server Error.", err)
	}
	return courses, nil
}

func notFoundOr(ctx context.Context, err error, failure string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFound(msgCourseNotFound)
	}
	return internal(ctx, failure, err)
}

func internal(ctx context.Context, message string, err error) error {
	observability.FromContext(ctx).WithError(err).Error(message)
	return apperr.NewInternal(message, err)
}
