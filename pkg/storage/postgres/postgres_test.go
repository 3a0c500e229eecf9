package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/storage"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(db), mock
}

var userRowColumns = []string{"id", "first_name", "last_name", "email", "password_hash", "is_admin", "mobile_no"}

func TestGetUser_Found(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "Ada", "Lovelace", "ada@example.com", "$2a$10$hash", false, "5550100"))

	user, err := store.GetUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "$2a$10$hash", user.Password)
	assert.False(t, user.IsAdmin)
}

func TestGetUser_NotFound(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("ADA@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "Ada", "Lovelace", "ada@example.com", "hash", true, "5550100"))

	user, err := store.GetUserByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.True(t, user.IsAdmin)
}

func TestCreateUser_AssignsID(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "Ada", "Lovelace", "ada@example.com", "hash", false, "5550100").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "hash", MobileNo: "5550100"}
	require.NoError(t, store.CreateUser(context.Background(), user))
	assert.NotEmpty(t, user.ID)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "users_email_key"})

	err := store.CreateUser(context.Background(), &models.User{ID: "u-1", Email: "ada@example.com"})
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.Contains(t, err.Error(), "users_email_key")
}

func TestCreateUser_DBError(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	err := store.CreateUser(context.Background(), &models.User{ID: "u-1"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
	assert.NotErrorIs(t, err, storage.ErrConflict)
}

func TestUpdateUser_NotFound(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("Ada", "Lovelace", "ada@example.com", "hash", true, "5550100", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateUser(context.Background(), &models.User{
		ID: "ghost", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Password: "hash", IsAdmin: true, MobileNo: "5550100",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

var courseRowColumns = []string{"id", "name", "description", "price", "is_active", "date_created"}

func TestBuildCourseQuery(t *testing.T) {
	minPrice, maxPrice := 10.0, 50.0

	tests := []struct {
		name      string
		filter    storage.CourseFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "no filter",
			filter:    storage.CourseFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "active only",
			filter:    storage.CourseFilter{ActiveOnly: true},
			wantWhere: " WHERE is_active = TRUE",
			wantArgs:  nil,
		},
		{
			name:      "price range",
			filter:    storage.CourseFilter{MinPrice: &minPrice, MaxPrice: &maxPrice},
			wantWhere: " WHERE price >= $1 AND price <= $2",
			wantArgs:  []any{10.0, 50.0},
		},
		{
			name:      "upper bound only",
			filter:    storage.CourseFilter{ActiveOnly: true, MaxPrice: &maxPrice},
			wantWhere: " WHERE is_active = TRUE AND price <= $1",
			wantArgs:  []any{50.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildCourseQuery(tt.filter)
			assert.Equal(t, "SELECT "+courseColumns+" FROM courses"+tt.wantWhere+" ORDER BY date_created, id", query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestListCourses(t *testing.T) {
	store, mock := newStoreWithMock(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`FROM courses WHERE is_active = TRUE ORDER BY date_created, id`).
		WillReturnRows(sqlmock.NewRows(courseRowColumns).
			AddRow("c-1", "Go", "Learn Go", 100.0, true, created).
			AddRow("c-2", "SQL", "Learn SQL", 0.0, true, created.Add(time.Hour)))

	courses, err := store.ListCourses(context.Background(), storage.CourseFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "c-1", courses[0].ID)
	assert.Equal(t, created, courses[0].DateCreated)
	assert.Equal(t, 0.0, courses[1].Price)
}

func TestListCourses_EmptyIsNotNil(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`FROM courses`).WillReturnRows(sqlmock.NewRows(courseRowColumns))

	courses, err := store.ListCourses(context.Background(), storage.CourseFilter{})
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestCreateCourse_DuplicateName(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`INSERT INTO courses`).
		WithArgs(sqlmock.AnyArg(), "Go", "Learn Go", 100.0, true, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "courses_name_key"})

	course := &models.Course{Name: "Go", Description: "Learn Go", Price: 100, IsActive: true}
	err := store.CreateCourse(context.Background(), course)
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NotEmpty(t, course.ID)
	assert.False(t, course.DateCreated.IsZero())
}

func TestUpdateCourse(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`UPDATE courses`).
		WithArgs("Go", "Learn Go", 120.0, false, "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateCourse(context.Background(), &models.Course{ID: "c-1", Name: "Go", Description: "Learn Go", Price: 120})
	assert.NoError(t, err)
}

var enrollmentRowColumns = []string{"id", "user_id", "enrolled_courses", "total_price", "enrolled_on", "status", "version"}

func TestGetEnrollment_DecodesEntries(t *testing.T) {
	store, mock := newStoreWithMock(t)
	enrolled := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	mock.ExpectQuery(`FROM enrollments WHERE id = \$1`).
		WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow("e-1", "u-1", []byte(`[{"courseId":"c-1"},{"courseId":"c-2","status":"Completed"}]`), 150.0, enrolled, "Enrolled", int64(3)))

	enrollment, err := store.GetEnrollment(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, []models.EnrolledCourse{{CourseID: "c-1"}, {CourseID: "c-2", Status: "Completed"}}, enrollment.EnrolledCourses)
	assert.Equal(t, int64(3), enrollment.Version)
	assert.Equal(t, enrolled, enrollment.EnrolledOn)
}

func TestListEnrollmentsByUser(t *testing.T) {
	store, mock := newStoreWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM enrollments WHERE user_id = \$1 ORDER BY enrolled_on, id`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow("e-1", "u-1", []byte(`[]`), 10.0, now, "Enrolled", int64(1)).
			AddRow("e-2", "u-1", []byte(`[{"courseId":"c-9"}]`), 20.0, now, "Completed", int64(2)))

	enrollments, err := store.ListEnrollmentsByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.Empty(t, enrollments[0].EnrolledCourses)
	assert.NotNil(t, enrollments[0].EnrolledCourses)
	assert.Equal(t, "Completed", enrollments[1].Status)
}

func TestCreateEnrollment_Defaults(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`INSERT INTO enrollments`).
		WithArgs(sqlmock.AnyArg(), "u-1", `[{"courseId":"c-1"}]`, 100.0, sqlmock.AnyArg(), models.DefaultEnrollmentStatus).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{
		UserID:          "u-1",
		EnrolledCourses: []models.EnrolledCourse{{CourseID: "c-1"}},
		TotalPrice:      100,
	}
	require.NoError(t, store.CreateEnrollment(context.Background(), enrollment))
	assert.NotEmpty(t, enrollment.ID)
	assert.Equal(t, int64(1), enrollment.Version)
	assert.Equal(t, models.DefaultEnrollmentStatus, enrollment.Status)
	assert.False(t, enrollment.EnrolledOn.IsZero())
}

func TestUpdateEnrollment_CompareAndSwap(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`UPDATE enrollments .+ WHERE id = \$4 AND version = \$5`).
		WithArgs(`[{"courseId":"c-1","status":"Completed"}]`, 100.0, "Enrolled", "e-1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{
		ID:              "e-1",
		EnrolledCourses: []models.EnrolledCourse{{CourseID: "c-1", Status: "Completed"}},
		TotalPrice:      100,
		Status:          "Enrolled",
		Version:         2,
	}
	require.NoError(t, store.UpdateEnrollment(context.Background(), enrollment))
	assert.Equal(t, int64(3), enrollment.Version)
}

func TestUpdateEnrollment_StaleVersion(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(`UPDATE enrollments`).WillReturnResult(sqlmock.NewResult(0, 0))

	enrollment := &models.Enrollment{ID: "e-1", Status: "Enrolled", Version: 1}
	err := store.UpdateEnrollment(context.Background(), enrollment)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)
	assert.Equal(t, int64(1), enrollment.Version)
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("op", nil))
	assert.ErrorIs(t, mapError("op", sql.ErrNoRows), storage.ErrNotFound)
	assert.ErrorIs(t, mapError("op", &pq.Error{Code: uniqueViolation}), storage.ErrConflict)

	other := &pq.Error{Code: "42P01", Message: "relation does not exist"}
	err := mapError("op", other)
	assert.NotErrorIs(t, err, storage.ErrConflict)
	assert.ErrorIs(t, err, other)
}

func TestPingAndBackend(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	assert.Equal(t, "postgres", store.Backend())

	mock.ExpectPing()
	assert.NoError(t, store.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = store.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres unhealthy")
}
