package services

import "errors"

// Error categories. Callers match with errors.Is; services attach context
// by wrapping these with fmt.Errorf.
var (
	ErrValidation    = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrNotAuthorized = errors.New("permission denied")
	ErrPolicy        = errors.New("policy violation")
	ErrCollaborator  = errors.New("collaborator call failed")
)
