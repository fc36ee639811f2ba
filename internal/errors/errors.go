package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	// Workflow errors
	ErrCodeInvalidLinkFormat      ErrCode = "INVALID_LINK_FORMAT"
	ErrCodeNotAuthenticated       ErrCode = "NOT_AUTHENTICATED"
	ErrCodeNotOwner               ErrCode = "NOT_OWNER"
	ErrCodeForkNotAllowed         ErrCode = "FORK_NOT_ALLOWED"
	ErrCodeRemoteFetchFailed      ErrCode = "REMOTE_FETCH_FAILED"
	ErrCodePersistFailed          ErrCode = "PERSIST_FAILED"
	ErrCodeIssueFetchFailed       ErrCode = "ISSUE_FETCH_FAILED"
	ErrCodeRepositoryNotPersisted ErrCode = "REPOSITORY_NOT_PERSISTED"
	ErrCodeIssueSaveFailed        ErrCode = "ISSUE_SAVE_FAILED"
	ErrCodeFetchInProgress        ErrCode = "FETCH_IN_PROGRESS"
	ErrCodeNoRepository           ErrCode = "NO_REPOSITORY"
	ErrCodeInvalidTransition      ErrCode = "INVALID_TRANSITION"

	// Backend errors
	ErrCodeNotFound   ErrCode = "NOT_FOUND"
	ErrCodeInternal   ErrCode = "INTERNAL_ERROR"
	ErrCodeBadRequest ErrCode = "BAD_REQUEST"
)

// AppError represents an application error. Message is safe to show to the user.
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInvalidLinkFormatError creates an error for a link that is not https://github.com/<owner>/<repo>
func NewInvalidLinkFormatError(raw string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidLinkFormat,
		Message: "Invalid GitHub repository link. Use https://github.com/<owner>/<repo>",
		Err:     fmt.Errorf("unparseable link %q", raw),
	}
}

// NewNotAuthenticatedError creates an error for a missing session username
func NewNotAuthenticatedError() *AppError {
	return &AppError{
		Code:    ErrCodeNotAuthenticated,
		Message: "You must be signed in to import a repository",
	}
}

// NewNotOwnerError creates an error for a repository owned by someone else
func NewNotOwnerError(owner, username string) *AppError {
	return &AppError{
		Code:    ErrCodeNotOwner,
		Message: "You can only import repositories you own",
		Err:     fmt.Errorf("owner %q does not match user %q", owner, username),
	}
}

// NewForkNotAllowedError creates an error for a forked repository
func NewForkNotAllowedError(fullName string) *AppError {
	return &AppError{
		Code:    ErrCodeForkNotAllowed,
		Message: "Forked repositories cannot be imported",
		Err:     fmt.Errorf("%s is a fork", fullName),
	}
}

// NewRemoteFetchFailedError creates an error for a failed repository metadata read
func NewRemoteFetchFailedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeRemoteFetchFailed,
		Message: "Could not fetch the repository from GitHub",
		Err:     err,
	}
}

// NewPersistFailedError creates an error for a rejected repository save
func NewPersistFailedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodePersistFailed,
		Message: "Failed to save the repository",
		Err:     err,
	}
}

// NewIssueFetchFailedError creates an error for a failed issue list read
func NewIssueFetchFailedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeIssueFetchFailed,
		Message: "Repository saved, but its issues could not be fetched",
		Err:     err,
	}
}

// NewRepositoryNotPersistedError creates an error for an issue save before its repository exists
func NewRepositoryNotPersistedError() *AppError {
	return &AppError{
		Code:    ErrCodeRepositoryNotPersisted,
		Message: "Save the repository before importing issues",
	}
}

// NewIssueSaveFailedError creates an error for a failed issue save.
// A non-empty detail from the backend replaces the generic message.
func NewIssueSaveFailedError(number int, detail string, err error) *AppError {
	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("Failed to save issue #%d", number)
	}
	return &AppError{
		Code:    ErrCodeIssueSaveFailed,
		Message: msg,
		Err:     err,
	}
}

// NewFetchInProgressError creates an error for a re-entrant fetch
func NewFetchInProgressError() *AppError {
	return &AppError{
		Code:    ErrCodeFetchInProgress,
		Message: "A fetch is already in progress",
	}
}

// NewNoRepositoryError creates an error for a save without a fetched repository
func NewNoRepositoryError() *AppError {
	return &AppError{
		Code:    ErrCodeNoRepository,
		Message: "Fetch a repository first",
	}
}

// NewInvalidTransitionError creates an error for a step not allowed in the current phase
func NewInvalidTransitionError(from, to string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("Cannot move from %s to %s", from, to),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// As returns the AppError in err's chain, if any
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code
func Is(err error, code ErrCode) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, ErrCodeNotFound)
}

// UserMessage returns the message to show for err
func UserMessage(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
