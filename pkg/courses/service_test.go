package courses

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/coursebook/pkg/apperr"
	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/storage"
	"github.com/platinummonkey/coursebook/pkg/storage/memory"
)

var errBackend = errors.New("backend unavailable")

// brokenStore fails the calls the tests reach; GetCourseByName reports a miss
type brokenStore struct {
	storage.CourseStore
}

func (brokenStore) GetCourse(context.Context, string) (*models.Course, error) {
	return nil, errBackend
}

func (brokenStore) GetCourseByName(context.Context, string) (*models.Course, error) {
	return nil, storage.ErrNotFound
}

func (brokenStore) ListCourses(context.Context, storage.CourseFilter) ([]*models.Course, error) {
	return nil, errBackend
}

func (brokenStore) CreateCourse(context.Context, *models.Course) error {
	return errBackend
}

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewStore())
}

func seed(t *testing.T, s *Service, name string, price float64) *models.Course {
	t.Helper()
	course, err := s.AddCourse(context.Background(), NewCourse{Name: name, Description: name + " course", Price: &price})
	require.NoError(t, err)
	return course
}

func requireKind(t *testing.T, err error, kind apperr.Kind, message string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err))
	assert.Equal(t, message, apperr.MessageOf(err))
}

func TestAddCourse(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	course, err := s.AddCourse(ctx, NewCourse{Name: "Go", Description: "Learn Go", Price: ptr(1500.0)})
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.True(t, course.IsActive)
	assert.False(t, course.DateCreated.IsZero())

	_, err = s.AddCourse(ctx, NewCourse{Name: "Go", Description: "Again", Price: ptr(10.0)})
	requireKind(t, err, apperr.Conflict, "Course already exists")

}

func TestAddCourse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      NewCourse
		message string
	}{
		{"empty body", NewCourse{}, "Course name is required"},
		{"blank name", NewCourse{Name: "  ", Description: "d", Price: ptr(1.0)}, "Course name is required"},
		{"missing description", NewCourse{Name: "Rust", Price: ptr(1.0)}, "Course description is required"},
		{"missing price", NewCourse{Name: "Rust", Description: "Learn Rust"}, "Course price is required"},
		{"negative price", NewCourse{Name: "Rust", Description: "Learn Rust", Price: ptr(-1.0)}, "Price must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t)
			_, err := s.AddCourse(context.Background(), tt.in)
			requireKind(t, err, apperr.BadRequest, tt.message)

			all, err := s.ListAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}

	t.Run("zero price is allowed", func(t *testing.T) {
		course, err := newTestService(t).AddCourse(context.Background(), NewCourse{Name: "Free", Description: "Intro", Price: ptr(0.0)})
		require.NoError(t, err)
		assert.Zero(t, course.Price)
	})
}

func TestAddCourse_StoreFailure(t *testing.T) {
	s := NewService(brokenStore{})
	_, err := s.AddCourse(context.Background(), NewCourse{Name: "Go", Description: "Learn Go", Price: ptr(1.0)})
	requireKind(t, err, apperr.Internal, "Failed to save the course")
	assert.ErrorIs(t, err, errBackend)
}

func TestListAllAndActive(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	keep := seed(t, s, "Go", 100)
	archived := seed(t, s, "Rust", 200)
	_, err = s.ArchiveCourse(ctx, archived.ID)
	require.NoError(t, err)

	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep.ID, active[0].ID)
}

func TestGetCourse(t *testing.T) {
	s := newTestService(t)
	course := seed(t, s, "Go", 100)

	got, err := s.GetCourse(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.Name, got.Name)

	_, err = s.GetCourse(context.Background(), "missing")
	requireKind(t, err, apperr.NotFound, "Course not found")

	_, err = NewService(brokenStore{}).GetCourse(context.Background(), course.ID)
	requireKind(t, err, apperr.Internal, "Failed to fetch course")
}

func TestUpdateCourse(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	course := seed(t, s, "Go", 100)
	seed(t, s, "Rust", 200)

	updated, err := s.UpdateCourse(ctx, course.ID, CourseUpdate{Price: ptr(250.0)})
	require.NoError(t, err)
	assert.Equal(t, 250.0, updated.Price)
	assert.Equal(t, "Go", updated.Name)
	assert.Equal(t, "Go course", updated.Description)

	updated, err = s.UpdateCourse(ctx, course.ID, CourseUpdate{Name: ptr("Go 2"), Description: ptr("Generics")})
	require.NoError(t, err)
	assert.Equal(t, "Go 2", updated.Name)
	assert.Equal(t, "Generics", updated.Description)

	_, err = s.UpdateCourse(ctx, course.ID, CourseUpdate{Name: ptr("Rust")})
	requireKind(t, err, apperr.Conflict, "Course already exists")

	_, err = s.UpdateCourse(ctx, "missing", CourseUpdate{Price: ptr(1.0)})
	requireKind(t, err, apperr.NotFound, "Course not found")

	_, err = s.UpdateCourse(ctx, course.ID, CourseUpdate{Price: ptr(-5.0)})
	requireKind(t, err, apperr.BadRequest, "Price must not be negative")
}

func TestArchiveAndActivate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	course := seed(t, s, "Go", 100)

	archived, err := s.ArchiveCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)

	stored, err := s.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	activated, err := s.ActivateCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	_, err = s.ArchiveCourse(ctx, "missing")
	requireKind(t, err, apperr.NotFound, "Course not found")
	_, err = s.ActivateCourse(ctx, "missing")
	requireKind(t, err, apperr.NotFound, "Course not found")
}

func TestSearchByPriceRange(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	seed(t, s, "Free", 0)
	seed(t, s, "Cheap", 50)
	seed(t, s, "Mid", 100)
	seed(t, s, "Pricey", 500)

	names := func(courses []*models.Course) []string {
		out := make([]string, 0, len(courses))
		for _, c := range courses {
			out = append(out, c.Name)
		}
		return out
	}

	tests := []struct {
		name string
		in   PriceRange
		want []string
	}{
		{"inclusive bounds", PriceRange{MinPrice: ptr(50.0), MaxPrice: ptr(100.0)}, []string{"Cheap", "Mid"}},
		{"zero is a valid bound", PriceRange{MinPrice: ptr(0.0), MaxPrice: ptr(0.0)}, []string{"Free"}},
		{"inverted range matches nothing", PriceRange{MinPrice: ptr(100.0), MaxPrice: ptr(50.0)}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := s.SearchByPriceRange(ctx, tt.in)
			require.NoError(t, err)
			assert.NotNil(t, courses)
			assert.ElementsMatch(t, tt.want, names(courses))
		})
	}

	for _, in := range []PriceRange{{}, {MinPrice: ptr(1.0)}, {MaxPrice: ptr(1.0)}} {
		_, err := s.SearchByPriceRange(ctx, in)
		requireKind(t, err, apperr.BadRequest, "Both minPrice and maxPrice are required in the request body.")
	}

	_, err := NewService(brokenStore{}).SearchByPriceRange(ctx, PriceRange{MinPrice: ptr(1.0), MaxPrice: ptr(2.0)})
	requireKind(t, err, apperr.Internal, "Internal Server Error.")
}
