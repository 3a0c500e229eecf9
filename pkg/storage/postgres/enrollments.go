package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/storage"
)

const enrollmentColumns = `id, user_id, enrolled_courses, total_price, enrolled_on, status, version`

func scanEnrollment(row interface{ Scan(...any) error }) (*models.Enrollment, error) {
	var (
		e       models.Enrollment
		entries []byte
	)
	if err := row.Scan(&e.ID, &e.UserID, &entries, &e.TotalPrice, &e.EnrolledOn, &e.Status, &e.Version); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(entries, &e.EnrolledCourses); err != nil {
		return nil, fmt.Errorf("failed to decode enrolled courses: %w", err)
	}
	if e.EnrolledCourses == nil {
		e.EnrolledCourses = []models.EnrolledCourse{}
	}
	return &e, nil
}

// encodeEntries renders entries as JSONB text; lib/pq would send []byte as bytea
func encodeEntries(entries []models.EnrolledCourse) (string, error) {
	if entries == nil {
		entries = []models.EnrolledCourse{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode enrolled courses: %w", err)
	}
	return string(data), nil
}

func (s *Store) GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id)
	enrollment, err := scanEnrollment(row)
	if err != nil {
		return nil, mapError("get enrollment", err)
	}
	return enrollment, nil
}

func (s *Store) ListEnrollmentsByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE user_id = $1 ORDER BY enrolled_on, id`, userID)
	if err != nil {
		return nil, mapError("list enrollments", err)
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, mapError("scan enrollment", err)
		}
		enrollments = append(enrollments, enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list enrollments", err)
	}
	return enrollments, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledOn.IsZero() {
		enrollment.EnrolledOn = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.DefaultEnrollmentStatus
	}
	if enrollment.EnrolledCourses == nil {
		enrollment.EnrolledCourses = []models.EnrolledCourse{}
	}
	entries, err := encodeEntries(enrollment.EnrolledCourses)
	if err != nil {
		return err
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO enrollments (id, user_id, enrolled_courses, total_price, enrolled_on, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
	`, enrollment.ID, enrollment.UserID, entries, enrollment.TotalPrice, enrollment.EnrolledOn, enrollment.Status)
	if err != nil {
		return mapError("create enrollment", err)
	}
	enrollment.Version = 1
	return nil
}

// UpdateEnrollment is a compare-and-swap on version. Zero affected rows means
// the row moved on since it was read.
func (s *Store) UpdateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	entries, err := encodeEntries(enrollment.EnrolledCourses)
	if err != nil {
		return err
	}

	res, err := s.q.ExecContext(ctx, `
		UPDATE enrollments
		SET enrolled_courses = $1, total_price = $2, status = $3, version = version + 1
		WHERE id = $4 AND version = $5
	`, entries, enrollment.TotalPrice, enrollment.Status, enrollment.ID, enrollment.Version)
	if err != nil {
		return mapError("update enrollment", err)
	}
	if err := expectOneRow("update enrollment", res, storage.ErrVersionConflict); err != nil {
		return err
	}
	enrollment.Version++
	return nil
}
