package service

import "errors"

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden indicates the identity lacks permission for the requested mutation.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrUnauthenticated indicates the operation requires a logged-in identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredentials is returned for any login failure. A single
	// generic error covers unknown email and wrong password alike so the
	// API never reveals whether an address is registered.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already in use")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already in use")
	// ErrEmptyBody indicates user content was empty after sanitization.
	ErrEmptyBody = errors.New("content empty after sanitization")
)
