// Package models holds the persisted records of the course booking API.
package models

import "time"

// DefaultEnrollmentStatus is the overall status of a new enrollment
const DefaultEnrollmentStatus = "Enrolled"

// User is a registered identity. Password holds the bcrypt hash.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	IsAdmin   bool   `json:"isAdmin"`
	MobileNo  string `json:"mobileNo"`
}

// PublicUser is the client view of a User with the credential redacted
type PublicUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	MobileNo  string `json:"mobileNo"`
}

// Public returns the redacted view of u
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		MobileNo:  u.MobileNo,
	}
}

// Course is a catalog entry. Courses are archived, never deleted.
type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	IsActive    bool      `json:"isActive"`
	DateCreated time.Time `json:"dateCreated"`
}

// EnrolledCourse is one course entry of an enrollment
type EnrolledCourse struct {
	CourseID string `json:"courseId"`
	Status   string `json:"status,omitempty"`
}

// Enrollment links a user to the courses they enrolled in.
// Version increases on every successful update and stays internal to storage.
type Enrollment struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	EnrolledCourses []EnrolledCourse `json:"enrolledCourses"`
	TotalPrice      float64          `json:"totalPrice"`
	EnrolledOn      time.Time        `json:"enrolledOn"`
	Status          string           `json:"status"`
	Version         int64            `json:"-"`
}

// Clone returns a deep copy of e
func (e *Enrollment) Clone() *Enrollment {
	c := *e
	c.EnrolledCourses = make([]EnrolledCourse, len(e.EnrolledCourses))
	copy(c.EnrolledCourses, e.EnrolledCourses)
	return &c
}

// FindCourse returns the index of the entry for courseID, or -1
func (e *Enrollment) FindCourse(courseID string) int {
	for i, entry := range e.EnrolledCourses {
		if entry.CourseID == courseID {
			return i
		}
	}
	return -1
}
