// Package apperr defines the error kinds shared across obsidian-open.
package apperr

import "errors"

var (
	// ErrNotFound indicates an expected file, folder, or executable is absent.
	ErrNotFound = errors.New("not found")

	// ErrParse indicates a persisted document is not valid structured data.
	ErrParse = errors.New("parse error")

	// ErrIO indicates a read, write, or create failure at the filesystem boundary.
	ErrIO = errors.New("i/o error")

	// ErrValidation indicates caller-supplied input was rejected before any state was touched.
	ErrValidation = errors.New("validation error")
)
