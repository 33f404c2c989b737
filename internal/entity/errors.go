package entity

import "errors"

var (
	ErrDonorNotFound         = errors.New("donor not found")
	ErrDonationNotFound      = errors.New("donation not found")
	ErrCommunicationNotFound = errors.New("communication not found")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrSessionNotFound       = errors.New("session not found")
	ErrEmailAlreadyExists    = errors.New("email already registered")
	ErrInvalidTransition     = errors.New("invalid status transition")
)
