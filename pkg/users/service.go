// Package users implements registration, login and profile operations.
package users

import (
	"context"
	"errors"
	"strings"

	"github.com/platinummonkey/coursebook/pkg/apperr"
	"github.com/platinummonkey/coursebook/pkg/auth"
	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/observability"
	"github.com/platinummonkey/coursebook/pkg/storage"
)

// MobileNoLength is the exact length of an accepted mobile number
const MobileNoLength = 11

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

const (
	msgInvalidEmail    = "Invalid Email"
	msgDuplicateEmail  = "Duplicate Email Found"
	msgPasswordTooWeak = "Password must be atleast 8 characters"
	msgMobileInvalid   = "Mobile number invalid"
	msgAdminRequired   = "Unauthorized: Admin privileges required."
)

// TokenIssuer signs access tokens for logged in users
type TokenIssuer interface {
	Issue(identity auth.Identity) (string, error)
}

// Registration is the input of Register
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	MobileNo  string `json:"mobileNo"`
	Password  string `json:"password"`
}

// ProfileUpdate holds the profile fields to change; nil fields are kept
type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	MobileNo  *string `json:"mobileNo"`
}

// Service runs user operations
type Service struct {
	store  storage.UserStore
	hasher auth.PasswordHasher
	tokens TokenIssuer
}

// NewService creates a user service
func NewService(store storage.UserStore, hasher auth.PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

func validEmail(email string) bool {
	return strings.Contains(email, "@")
}

// CheckEmail reports whether email is already registered
func (s *Service) CheckEmail(ctx context.Context, email string) (bool, error) {
	if !validEmail(email) {
		return false, apperr.NewBadRequest(msgInvalidEmail)
	}

	_, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, internal(ctx, "Error in find", err)
	}
}

// Register validates and stores a new regular user
func (s *Service) Register(ctx context.Context, in Registration) (*models.User, error) {
	switch {
	case !validEmail(in.Email):
		return nil, apperr.NewBadRequest("Email invalid")
	case len(in.MobileNo) != MobileNoLength:
		return nil, apperr.NewBadRequest(msgMobileInvalid)
	case len(in.Password) < MinPasswordLength:
		return nil, apperr.NewBadRequest(msgPasswordTooWeak)
	case strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "":
		return nil, apperr.NewBadRequest("First name and last name are required")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internal(ctx, "Error in save", err)
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		MobileNo:  in.MobileNo,
		Password:  hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.NewConflict(msgDuplicateEmail)
		}
		return nil, internal(ctx, "Error in save", err)
	}
	return user, nil
}

// Login checks the credentials and returns a signed access token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if !validEmail(email) {
		return "", apperr.NewBadRequest(msgInvalidEmail)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperr.NewNotFound("No Email Found")
		}
		return "", internal(ctx, "Error in find", err)
	}

	if !s.hasher.Compare(user.Password, password) {
		return "", apperr.New(apperr.Unauthorized, "Email and password do not match")
	}

	token, err := s.tokens.Issue(auth.Identity{
		ID:      user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return "", internal(ctx, "Error in find", err)
	}
	return token, nil
}

// Details returns the user record of id
func (s *Service) Details(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(ctx, err, "User not found", "Failed to fetch user profile")
	}
	return user, nil
}

// ResetPassword replaces the password of user id
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperr.NewBadRequest(msgPasswordTooWeak)
	}

	const failure = "Internal server error"
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return notFoundOr(ctx, err, "User not found", failure)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return internal(ctx, failure, err)
	}
	user.Password = hash

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return notFoundOr(ctx, err, "User not found", failure)
	}
	return nil
}

// UpdateProfile applies the non-nil fields of update to user id
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	if update.MobileNo != nil && len(*update.MobileNo) != MobileNoLength {
		return nil, apperr.NewBadRequest(msgMobileInvalid)
	}

	const failure = "Failed to update profile"
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(ctx, err, "User not found", failure)
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.MobileNo != nil {
		user.MobileNo = *update.MobileNo
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, notFoundOr(ctx, err, "User not found", failure)
	}
	return user, nil
}

// UpdateAdmin grants admin privileges to userID. The caller must be an admin.
func (s *Service) UpdateAdmin(ctx context.Context, caller auth.Identity, userID string) error {
	if !caller.IsAdmin {
		return apperr.NewForbidden(msgAdminRequired)
	}
	if userID == "" {
		return apperr.NewBadRequest("User ID is required in the request body.")
	}

	const failure = "Internal Server Error."
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return notFoundOr(ctx, err, "User not found.", failure)
	}
	if user.IsAdmin {
		return nil
	}

	user.IsAdmin = true
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return notFoundOr(ctx, err, "User not found.", failure)
	}

	observability.FromContext(ctx).
		WithField("target_user_id", user.ID).
		Info("user promoted to admin")
	return nil
}

func notFoundOr(ctx context.Context, err error, notFound, failure string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFound(notFound)
	}
	return internal(ctx, failure, err)
}

func internal(ctx context.Context, message string, err error) error {
	observability.FromContext(ctx).WithError(err).Error(message)
	return apperr.NewInternal(message, err)
}
