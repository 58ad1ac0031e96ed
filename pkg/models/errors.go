package models

import (
	"fmt"
)

// ValidationError reports an invalid root, configuration value or operation
// field. It is raised before any walk or copy begins.
type ValidationError struct {
	Field   string
	Path    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := e.Field + ": " + e.Message
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// WalkError reports a failure while enumerating or inspecting the source tree.
// It aborts the diff and no partial result is returned.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("failed to walk %s: %v", e.Path, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// CopyError records why a single candidate could not be copied
type CopyError struct {
	RelativePath string
	Err          error
}

func (e CopyError) Error() string {
	return fmt.Sprintf("%s: %v", e.RelativePath, e.Err)
}

func (e CopyError) Unwrap() error {
	return e.Err
}

