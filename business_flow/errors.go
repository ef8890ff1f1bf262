// Package businessflow contains the core business logic and use cases for publication workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Request validation errors
	ErrUserIDRequired     = errors.New("userId is required")
	ErrCampaignIDRequired = errors.New("campaignId is required")

	// Content store errors
	ErrContentNotFound  = errors.New("content not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrNoSystemToken    = errors.New("no system token available")

	// Scheduler errors
	ErrSchedulerNotConfigured = errors.New("scheduler is not configured")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// Error checking helpers

func IsUserIDRequired(err error) bool {
	return errors.Is(err, ErrUserIDRequired)
}

func IsCampaignIDRequired(err error) bool {
	return errors.Is(err, ErrCampaignIDRequired)
}

func IsContentNotFound(err error) bool {
	return errors.Is(err, ErrContentNotFound)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsNoSystemToken(err error) bool {
	return errors.Is(err, ErrNoSystemToken)
}

func IsSchedulerNotConfigured(err error) bool {
	return errors.Is(err, ErrSchedulerNotConfigured)
}
