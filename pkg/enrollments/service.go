// Package enrollments implements course enrollment and the admin driven
// enrollment status reconciliation.
package enrollments

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/coursebook/pkg/apperr"
	"github.com/platinummonkey/coursebook/pkg/auth"
	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/observability"
	"github.com/platinummonkey/coursebook/pkg/storage"
)

// MaxUpdateAttempts bounds the read, reconcile, compare-and-swap cycle
const MaxUpdateAttempts = 3

const tracerName = "github.com/platinummonkey/coursebook/pkg/enrollments"

// Recorder counts reconciliation outcomes
type Recorder interface {
	RecordReconciliation(outcome string)
}

// CourseSelection is one requested course of an enrollment
type CourseSelection struct {
	CourseID string `json:"courseId"`
}

// EnrollRequest is the input of Enroll
type EnrollRequest struct {
	EnrolledCourses []CourseSelection `json:"enrolledCourses"`
	TotalPrice      *float64          `json:"totalPrice"`
}

// StatusUpdate is the input of UpdateEnrollmentStatus. EnrollmentID is read
// from the "userId" field of the request body.
type StatusUpdate struct {
	EnrollmentID string `json:"userId"`
	CourseID     string `json:"courseId"`
	Status       string `json:"enrollmentStatus"`
}

// Service runs enrollment operations
type Service struct {
	store    storage.EnrollmentStore
	recorder Recorder
	tracer   trace.Tracer
}

// NewService creates an enrollment service; recorder may be nil
func NewService(store storage.EnrollmentStore, recorder Recorder) *Service {
	return &Service{
		store:    store,
		recorder: recorder,
		tracer:   otel.Tracer(tracerName),
	}
}

func (s *Service) record(outcome Outcome) {
	if s.recorder != nil {
		s.recorder.RecordReconciliation(string(outcome))
	}
}

// Enroll creates an enrollment owned by caller. Admins cannot enroll.
func (s *Service) Enroll(ctx context.Context, caller auth.Identity, in EnrollRequest) (*models.Enrollment, error) {
	if caller.IsAdmin {
		return nil, apperr.NewForbidden("Action Forbidden")
	}
	if len(in.EnrolledCourses) == 0 {
		return nil, apperr.NewBadRequest("enrolledCourses is required")
	}
	if in.TotalPrice == nil {
		return nil, apperr.NewBadRequest("totalPrice is required")
	}
	if *in.TotalPrice < 0 {
		return nil, apperr.NewBadRequest("totalPrice must not be negative")
	}

	entries := make([]models.EnrolledCourse, 0, len(in.EnrolledCourses))
	for _, selection := range in.EnrolledCourses {
		if strings.TrimSpace(selection.CourseID) == "" {
			return nil, apperr.NewBadRequest("Course ID is required")
		}
		entries = append(entries, models.EnrolledCourse{CourseID: selection.CourseID})
	}

	enrollment := &models.Enrollment{
		UserID:          caller.ID,
		EnrolledCourses: entries,
		TotalPrice:      *in.TotalPrice,
		Status:          models.DefaultEnrollmentStatus,
	}
	if err := s.store.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, internal(ctx, "Failed to save the enrollment", err)
	}
	return enrollment, nil
}

// GetEnrollments returns the enrollments of userID, NotFound when there are none
func (s *Service) GetEnrollments(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	enrollments, err := s.store.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, internal(ctx, "Failed to fetch enrollments", err)
	}
	if len(enrollments) == 0 {
		return nil, apperr.NewNotFound("No enrollments found")
	}
	return enrollments, nil
}

// UpdateEnrollmentStatus reconciles the status of one course of an
// enrollment. The write is a compare-and-swap on the enrollment version;
// a lost race rereads and reapplies up to MaxUpdateAttempts times.
func (s *Service) UpdateEnrollmentStatus(ctx context.Context, caller auth.Identity, in StatusUpdate) (err error) {
	ctx, span := s.tracer.Start(ctx, "enrollments.UpdateEnrollmentStatus",
		trace.WithAttributes(
			attribute.String("enrollment.id", in.EnrollmentID),
			attribute.String("course.id", in.CourseID),
		))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, apperr.MessageOf(err))
		}
		span.End()
	}()

	if !caller.IsAdmin {
		return apperr.NewForbidden("Unauthorized: Admin privileges required.")
	}
	if in.EnrollmentID == "" || in.CourseID == "" || in.Status == "" {
		return apperr.NewBadRequest("userId, courseId, and enrollmentStatus are required in the request body.")
	}

	logger := observability.UpdateLoggerWithTraceContext(ctx, observability.FromContext(ctx)).
		WithFields(map[string]interface{}{
			"enrollment_id": in.EnrollmentID,
			"course_id":     in.CourseID,
		})

	for attempt := 1; attempt <= MaxUpdateAttempts; attempt++ {
		enrollment, err := s.store.GetEnrollment(ctx, in.EnrollmentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.NewNotFound("User not found.")
			}
			return internal(ctx, "Internal Server Error.", err)
		}

		outcome := Reconcile(enrollment, in.CourseID, in.Status)

		err = s.store.UpdateEnrollment(ctx, enrollment)
		switch {
		case err == nil:
			s.record(outcome)
			span.SetAttributes(
				attribute.String("reconcile.outcome", string(outcome)),
				attribute.Int("reconcile.attempts", attempt),
			)
			logger.WithField("outcome", string(outcome)).Debug("enrollment status updated")
			return nil
		case errors.Is(err, storage.ErrVersionConflict):
			s.record(OutcomeVersionRetry)
			logger.WithField("attempt", attempt).Debug("enrollment changed concurrently, retrying")
		case errors.Is(err, storage.ErrNotFound):
			return apperr.NewNotFound("User not found.")
		default:
			return internal(ctx, "Internal Server Error.", err)
		}
	}

	s.record(OutcomeVersionExhausted)
	logger.Warn("enrollment status update gave up after concurrent modifications")
	return apperr.NewConflict("Enrollment was modified concurrently, please retry")
}

func internal(ctx context.Context, message string, err error) error {
	observability.FromContext(ctx).WithError(err).Error(message)
	return apperr.NewInternal(message, err)
}
