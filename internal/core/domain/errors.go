package domain

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrOfferNotFound        = errors.New("offer not found")
	ErrDealNotFound         = errors.New("deal not found")
	ErrOfferNotPending      = errors.New("offer is not pending")
	ErrOfferInProgress      = errors.New("offer decision already in progress")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrForbidden            = errors.New("access forbidden")
	ErrUnknownRole          = errors.New("unknown role")
	ErrInvalidTransition    = errors.New("invalid status transition")
)
