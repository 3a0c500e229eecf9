package enrollments

import "github.com/platinummonkey/coursebook/pkg/models"

// Outcome names what a status update did to an enrollment. The values are
// used as metric labels.
type Outcome string

const (
	OutcomeStatusOverwritten Outcome = "status_overwritten" // course present; overall status set
	OutcomeEntryAppended     Outcome = "entry_appended"     // course absent; entry appended
	OutcomeVersionRetry      Outcome = "version_retry"
	OutcomeVersionExhausted  Outcome = "version_exhausted"
)

// Reconcile applies a status update for courseID to e in place.
//
// When e already lists courseID the enrollment's overall Status becomes
// status and the entries are left untouched. Otherwise a new entry
// {courseID, status} is appended and the overall Status is kept.
func Reconcile(e *models.Enrollment, courseID, status string) Outcome {
	if e.FindCourse(courseID) != -1 {
		e.Status = status
		return OutcomeStatusOverwritten
	}

	e.EnrolledCourses = append(e.EnrolledCourses, models.EnrolledCourse{
		CourseID: courseID,
		Status:   status,
	})
	return OutcomeEntryAppended
}
