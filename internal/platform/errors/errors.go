package apperrors

import "errors"

var (
	ErrMissingAPIKey    = errors.New("ROBOFLOW_API_KEY is required")
	ErrMissingWorkspace = errors.New("WORKSPACE_NAME is required")
	ErrMissingWorkflow  = errors.New("WORKFLOW_ID is required")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrValidationFailed = errors.New("setup validation failed")
	ErrPipelineClosed   = errors.New("inference pipeline closed")
)
