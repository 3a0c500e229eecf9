package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/storage"
)

const courseColumns = `id, name, description, price, is_active, date_created`

func scanCourse(row interface{ Scan(...any) error }) (*models.Course, error) {
	var c models.Course
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.IsActive, &c.DateCreated); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	course, err := scanCourse(row)
	if err != nil {
		return nil, mapError("get course", err)
	}
	return course, nil
}

func (s *Store) GetCourseByName(ctx context.Context, name string) (*models.Course, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE name = $1`, name)
	course, err := scanCourse(row)
	if err != nil {
		return nil, mapError("get course by name", err)
	}
	return course, nil
}

// buildCourseQuery renders filter as a parameterized SELECT
func buildCourseQuery(filter storage.CourseFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	query := `SELECT ` + courseColumns + ` FROM courses`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY date_created, id`
	return query, args
}

func (s *Store) ListCourses(ctx context.Context, filter storage.CourseFilter) ([]*models.Course, error) {
	query, args := buildCourseQuery(filter)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list courses", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, mapError("scan course", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list courses", err)
	}
	return courses, nil
}

func (s *Store) CreateCourse(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.DateCreated.IsZero() {
		course.DateCreated = time.Now().UTC()
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO courses (id, name, description, price, is_active, date_created)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, course.ID, course.Name, course.Description, course.Price, course.IsActive, course.DateCreated)
	return mapError("create course", err)
}

func (s *Store) UpdateCourse(ctx context.Context, course *models.Course) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE courses
		SET name = $1, description = $2, price = $3, is_active = $4
		WHERE id = $5
	`, course.Name, course.Description, course.Price, course.IsActive, course.ID)
	if err != nil {
		return mapError("update course", err)
	}
	return expectOneRow("update course", res, storage.ErrNotFound)
}
