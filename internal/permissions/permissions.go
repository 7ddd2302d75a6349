// Package permissions holds the authorization rules for API resources.
//
// Rules receive the caller explicitly as a Principal; nothing is read from
// request-scoped globals.
package permissions

import (
	"errors"
	"net/http"
)

var (
	// ErrNotAuthenticated is returned when an anonymous caller needs to log in.
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	// ErrForbidden is returned when an authenticated caller is not allowed.
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// Principal is the caller a request acts on behalf of. A zero UserID is an
// anonymous caller.
type Principal struct {
	UserID  uint
	IsStaff bool
}

// Anonymous returns the principal of an unauthenticated request.
func Anonymous() Principal {
	return Principal{}
}

// IsAuthenticated reports whether the principal belongs to a logged-in user.
func (p Principal) IsAuthenticated() bool {
	return p.UserID != 0
}

// Authored is implemented by resources that have an owning author.
type Authored interface {
	GetAuthorID() uint
}

// Permission is a request-level and object-level authorization rule.
type Permission interface {
	HasPermission(p Principal, method string) bool
	HasObjectPermission(p Principal, method string, obj Authored) bool
}

// IsSafeMethod reports whether method is read-only.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// StaffOrReadOnly lets anyone read and only staff write.
type StaffOrReadOnly struct{}

func (StaffOrReadOnly) HasPermission(p Principal, method string) bool {
	return IsSafeMethod(method) || p.IsStaff
}

func (StaffOrReadOnly) HasObjectPermission(Principal, string, Authored) bool {
	return true
}

// AuthorOrReadOnly requires a logged-in caller for every request and lets
// only the author modify an object.
type AuthorOrReadOnly struct{}

func (AuthorOrReadOnly) HasPermission(p Principal, method string) bool {
	return p.IsAuthenticated()
}

func (AuthorOrReadOnly) HasObjectPermission(p Principal, method string, obj Authored) bool {
	if IsSafeMethod(method) {
		return true
	}
	return p.IsAuthenticated() && obj.GetAuthorID() == p.UserID
}

// Check evaluates the request-level rule and returns the denial error, if any.
func Check(perm Permission, p Principal, method string) error {
	if perm.HasPermission(p, method) {
		return nil
	}
	return denial(p)
}

// CheckObject evaluates the object-level rule and returns the denial error, if any.
func CheckObject(perm Permission, p Principal, method string, obj Authored) error {
	if perm.HasObjectPermission(p, method, obj) {
		return nil
	}
	return denial(p)
}

func denial(p Principal) error {
	if !p.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return ErrForbidden
}
