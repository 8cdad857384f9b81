// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. For example, ErrEmailExists maps to
// an HTTP 409 response while ErrNotFound maps to 404.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert would violate the unique
// constraint on users.email. Handlers should translate this into an
// HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenNotFound is returned when a refresh token string has no live
// row, either because it never existed or because it was already
// consumed by rotation or logout. Handlers should translate this into
// an HTTP 401 response.
var ErrTokenNotFound = errors.New("refresh token not found")
