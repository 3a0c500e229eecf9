package api

import (
	"net/http"

	"github.com/platinummonkey/coursebook/pkg/audit"
	"github.com/platinummonkey/coursebook/pkg/courses"
	"github.com/platinummonkey/coursebook/pkg/httputil"
	"github.com/platinummonkey/coursebook/pkg/middleware"
	"github.com/platinummonkey/coursebook/pkg/models"
)

// addCourse handles POST /courses
func (s *Server) addCourse(w http.ResponseWriter, r *http.Request, _ middleware.AuthenticatedContext) {
	var req courses.NewCourse
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	course, err := s.courses.AddCourse(r.Context(), req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	s.recordAudit(r, auditSuccess(r, audit.EventTypeCourseCreate, audit.ResourceTypeCourse, course.ID))
	httputil.WriteCreated(w, map[string]interface{}{"savedCourse": course})
}

// getAllCourses handles GET /courses/all
func (s *Server) getAllCourses(w http.ResponseWriter, r *http.Request, _ middleware.AuthenticatedContext) {
	list, err := s.courses.ListAll(r.Context())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	writeCourseList(w, list, "No courses found.")
}

// getActiveCourses handles GET /courses
func (s *Server) getActiveCourses(w http.ResponseWriter, r *http.Request) {
	list, err := s.courses.ListActive(r.Context())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	writeCourseList(w, list, "There are no courses at the moment.")
}

// writeCourseList answers {"courses": [...]}, or {"message": empty} when
// there is nothing to list. Both are 200.
func writeCourseList(w http.ResponseWriter, list []*models.Course, empty string) {
	if len(list) == 0 {
		httputil.WriteMessage(w, http.StatusOK, empty)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"courses": list})
}

// getCourse handles GET /courses/{courseId}
func (s *Server) getCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "courseId")
	if !ok {
		return
	}

	course, err := s.courses.GetCourse(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"course": course})
}

// updateCourse handles PATCH /courses/{courseId}
func (s *Server) updateCourse(w http.ResponseWriter, r *http.Request, _ middleware.AuthenticatedContext) {
	id, ok := httputil.ParsePathStringOrError(w, r, "courseId")
	if !ok {
		return
	}

	var req courses.CourseUpdate
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	course, err := s.courses.UpdateCourse(r.Context(), id, req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	s.recordAudit(r, auditSuccess(r, audit.EventTypeCourseUpdate, audit.ResourceTypeCourse, course.ID))
	httputil.WriteSuccess(w, map[string]interface{}{
		"message":       "Course updated successfully",
		"updatedCourse": course,
	})
}

// archiveCourse handles PATCH /courses/{courseId}/archive
func (s *Server) archiveCourse(w http.ResponseWriter, r *http.Request, _ middleware.AuthenticatedContext) {
	id, ok := httputil.ParsePathStringOrError(w, r, "courseId")
	if !ok {
		return
	}

	course, err := s.courses.ArchiveCourse(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	s.recordAudit(r, auditSuccess(r, audit.EventTypeCourseArchive, audit.ResourceTypeCourse, course.ID))
	httputil.WriteSuccess(w, map[string]interface{}{
		"message":       "Course archived successfully",
		"archiveCourse": course,
	})
}

// activateCourse handles PATCH /courses/{courseId}/activate
func (s *Server) activateCourse(w http.ResponseWriter, r *http.Request, _ middleware.AuthenticatedContext) {
	id, ok := httputil.ParsePathStringOrError(w, r, "courseId")
	if !ok {
		return
	}

	course, err := s.courses.ActivateCourse(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	s.recordAudit(r, auditSuccess(r, audit.EventTypeCourseActivate, audit.ResourceTypeCourse, course.ID))
	httputil.WriteSuccess(w, map[string]interface{}{
		"message":        "Course activated successfully",
		"activateCourse": course,
	})
}

// searchCoursesByPriceRange handles POST /courses/search. The result is a bare array.
func (s *Server) searchCoursesByPriceRange(w http.ResponseWriter, r *http.Request) {
	var req courses.PriceRange
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	list, err := s.courses.SearchByPriceRange(r.Context(), req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, list)
}
