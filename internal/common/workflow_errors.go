package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed workflow step.
type ErrorKind string

const (
	// KindLookup: a required reference row (admin by role, category by name, target record) is missing.
	KindLookup ErrorKind = "LookupError"
	// KindWrite: a single insert or update failed.
	KindWrite ErrorKind = "WriteError"
	// KindValidation: an input rule was violated before any I/O.
	KindValidation ErrorKind = "ValidationError"
	// KindLink: a cross-reference target is missing or in the wrong state.
	KindLink ErrorKind = "LinkError"
	// KindStorage: an object upload or delete failed.
	KindStorage ErrorKind = "StorageError"
)

// WorkflowError is returned by the submission and status-transition workflows.
// Op names the step that failed, e.g. "insert_complaint".
type WorkflowError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Details interface{}
	Err     error
}

func (e *WorkflowError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *WorkflowError) Unwrap() error { return e.Err }

// Is matches any WorkflowError of the same kind, so errors.Is(err, ErrLink) works
// regardless of the op or message.
func (e *WorkflowError) Is(target error) bool {
	t, ok := target.(*WorkflowError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == ""
}

// Kind sentinels for errors.Is.
var (
	ErrLookup     = &WorkflowError{Kind: KindLookup}
	ErrWrite      = &WorkflowError{Kind: KindWrite}
	ErrValidation = &WorkflowError{Kind: KindValidation}
	ErrLink       = &WorkflowError{Kind: KindLink}
	ErrStorage    = &WorkflowError{Kind: KindStorage}
)

func NewLookupError(op, message string, err error) *WorkflowError {
	return &WorkflowError{Kind: KindLookup, Op: op, Message: message, Err: err}
}

func NewWriteError(op, message string, err error) *WorkflowError {
	return &WorkflowError{Kind: KindWrite, Op: op, Message: message, Err: err}
}

// NewValidationError carries per-field messages in details.
func NewValidationError(message string, details map[string]string) *WorkflowError {
	we := &WorkflowError{Kind: KindValidation, Op: "validate", Message: message}
	if len(details) > 0 {
		we.Details = details
	}
	return we
}

func NewLinkError(op, message string, err error) *WorkflowError {
	return &WorkflowError{Kind: KindLink, Op: op, Message: message, Err: err}
}

func NewStorageError(op, message string, err error) *WorkflowError {
	return &WorkflowError{Kind: KindStorage, Op: op, Message: message, Err: err}
}

// IsWorkflowError unwraps err into a *WorkflowError when possible.
func IsWorkflowError(err error) (*WorkflowError, bool) {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// ToAPIError maps a workflow failure onto the HTTP error envelope.
func (e *WorkflowError) ToAPIError() *APIError {
	var status int
	var code string
	switch e.Kind {
	case KindLookup:
		status, code = http.StatusNotFound, "LOOKUP_ERROR"
	case KindValidation:
		status, code = http.StatusUnprocessableEntity, "VALIDATION_ERROR"
	case KindLink:
		status, code = http.StatusConflict, "LINK_ERROR"
	case KindStorage:
		status, code = http.StatusBadGateway, "STORAGE_ERROR"
	default:
		status, code = http.StatusInternalServerError, "WRITE_ERROR"
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	apiErr := NewAPIError(status, code, msg)
	if e.Details != nil {
		apiErr.Details = e.Details
	} else if e.Op != "" {
		apiErr.Details = map[string]string{"step": e.Op}
	}
	return apiErr
}
