package api

import (
	"net/http"

	"github.com/platinummonkey/coursebook/pkg/apperr"
	"github.com/platinummonkey/coursebook/pkg/audit"
	"github.com/platinummonkey/coursebook/pkg/enrollments"
	"github.com/platinummonkey/coursebook/pkg/httputil"
	"github.com/platinummonkey/coursebook/pkg/middleware"
	"github.com/platinummonkey/coursebook/pkg/users"
)

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type updateAdminRequest struct {
	UserID string `json:"userId"`
}

// checkEmail handles POST /users/checkEmail. A registered email answers 409,
// an unknown one 404.
func (s *Server) checkEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	exists, err := s.users.CheckEmail(r.Context(), req.Email)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	if exists {
		httputil.WriteConflict(w, "Duplicate Email Found")
		return
	}
	httputil.WriteMessage(w, http.StatusNotFound, "Email not found")
}

// registerUser handles POST /users/register
func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req users.Registration
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	event := auditSuccess(r, audit.EventTypeAuthRegister, audit.ResourceTypeUser, user.ID)
	event.Email = user.Email
	s.recordAudit(r, event)

	httputil.WriteMessage(w, http.StatusCreated, "Registered Successfully")
}

// loginUser handles POST /users/login
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if kind := apperr.KindOf(err); kind == apperr.Unauthorized || kind == apperr.NotFound {
			event := audit.NewEvent(r, audit.EventTypeAuthLoginFailed, audit.EventStatusFailure)
			event.Email = req.Email
			event.Message = apperr.MessageOf(err)
			s.recordAudit(r, event)
		}
		httputil.WriteAppError(w, err)
		return
	}

	event := audit.NewEvent(r, audit.EventTypeAuthLogin, audit.EventStatusSuccess)
	event.Email = req.Email
	s.recordAudit(r, event)

	httputil.WriteSuccess(w, map[string]string{"access": token})
}

// getProfile handles POST /users/details
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request, caller middleware.AuthenticatedContext) {
	user, err := s.users.Details(r.Context(), caller.UserID())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"user": user.Public()})
}

// enroll handles POST /users/enroll
func (s *Server) enroll(w http.ResponseWriter, r *http.Request, caller middleware.AuthenticatedContext) {
	var req enrollments.EnrollRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	enrollment, err := s.enrollments.Enroll(r.Context(), caller.Identity(), req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	s.recordAudit(r, auditSuccess(r, audit.EventTypeEnrollmentCreate, audit.ResourceTypeEnrollment, enrollment.ID))

	httputil.WriteCreated(w, enrollment)
}

// getEnrollments handles GET /users/getEnrollments
func (s *Server) getEnrollments(w http.ResponseWriter, r *http.Request, caller middleware.AuthenticatedContext) {
	list, err := s.enrollments.GetEnrollments(r.Context(), caller.UserID())
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, list)
}

// resetPassword handles PUT /users/reset-password
func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request, caller middleware.AuthenticatedContext) {
	var req resetPasswordRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.users.ResetPassword(r.Context(), caller.UserID(), req.NewPassword); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	s.recordAudit(r, auditSuccess(r, audit.EventTypeAuthPasswordChange, audit.ResourceTypeUser, caller.UserID()))

	httputil.WriteMessage(w, http.StatusOK, "Password reset successfully")
}

// updateProfile handles PUT /users/profile
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, caller middleware.AuthenticatedContext) {
	var req users.ProfileUpdate
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), caller.UserID(), req)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, user.Public())
}

// updateAdmin handles PUT /users/updateAdmin
func (s *Server) updateAdmin(w http.ResponseWriter, r *http.Request, caller middleware.AuthenticatedContext) {
	var req updateAdminRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.users.UpdateAdmin(r.Context(), caller.Identity(), req.UserID); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	s.recordAudit(r, auditSuccess(r, audit.EventTypeAdminUserPromote, audit.ResourceTypeUser, req.UserID))

	httputil.WriteMessage(w, http.StatusOK, "User updated successfully.")
}

// updateEnrollmentStatus handles PUT /users/updateEnrollmentStatus
func (s *Server) updateEnrollmentStatus(w http.ResponseWriter, r *http.Request, caller middleware.AuthenticatedContext) {
	var req enrollments.StatusUpdate
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.enrollments.UpdateEnrollmentStatus(r.Context(), caller.Identity(), req); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	event := auditSuccess(r, audit.EventTypeEnrollmentStatusUpdate, audit.ResourceTypeEnrollment, req.EnrollmentID)
	event.Metadata = map[string]interface{}{
		"course_id": req.CourseID,
		"status":    req.Status,
	}
	s.recordAudit(r, event)

	httputil.WriteMessage(w, http.StatusOK, "Enrollment status updated successfully.")
}
