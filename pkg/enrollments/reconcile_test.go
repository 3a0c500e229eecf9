package enrollments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platinummonkey/coursebook/pkg/models"
)

func TestReconcile(t *testing.T) {
	base := func() *models.Enrollment {
		return &models.Enrollment{
			Status: models.DefaultEnrollmentStatus,
			EnrolledCourses: []models.EnrolledCourse{
				{CourseID: "c-1"},
				{CourseID: "c-2", Status: "Pending"},
			},
		}
	}

	t.Run("present course overwrites overall status", func(t *testing.T) {
		e := base()
		outcome := Reconcile(e, "c-2", "Completed")

		assert.Equal(t, OutcomeStatusOverwritten, outcome)
		assert.Equal(t, "Completed", e.Status)
		assert.Equal(t, base().EnrolledCourses, e.EnrolledCourses)
	})

	t.Run("absent course appends an entry", func(t *testing.T) {
		e := base()
		outcome := Reconcile(e, "c-3", "Dropped")

		assert.Equal(t, OutcomeEntryAppended, outcome)
		assert.Equal(t, models.DefaultEnrollmentStatus, e.Status)
		assert.Equal(t, []models.EnrolledCourse{
			{CourseID: "c-1"},
			{CourseID: "c-2", Status: "Pending"},
			{CourseID: "c-3", Status: "Dropped"},
		}, e.EnrolledCourses)
	})

	t.Run("empty enrollment appends", func(t *testing.T) {
		e := &models.Enrollment{}
		assert.Equal(t, OutcomeEntryAppended, Reconcile(e, "c-1", "Enrolled"))
		assert.Len(t, e.EnrolledCourses, 1)
	})
}
