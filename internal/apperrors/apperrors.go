package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrConflict      = errors.New("resource was modified concurrently")
	ErrCorruptRecord = errors.New("stored record is malformed")

	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")

	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("only the owner can modify this resource")

	ErrUnauthorized      = errors.New("user is not a party to this barter")
	ErrInvalidTransition = errors.New("action is not allowed for the current barter status")
	ErrNotReady          = errors.New("barter is not ready for completion")
	ErrInvalidCode       = errors.New("invalid confirmation code")
	ErrChatNotAvailable  = errors.New("chat is available only after both parties accept")
	ErrSelfBarter        = errors.New("cannot barter for your own listing")
	ErrListingInactive   = errors.New("listing is no longer active")

	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrSelfRating    = errors.New("cannot rate or endorse yourself")

	ErrAlreadyMember = errors.New("user is already a member of this community")
	ErrNotMember     = errors.New("user is not a member of this community")
)

type ListingNotFoundError struct{ ListingID string }

func (e *ListingNotFoundError) Error() string {
	return fmt.Sprintf("listing '%s' not found", e.ListingID)
}
func (e *ListingNotFoundError) Is(target error) bool { return target == ErrNotFound }

type RequestNotFoundError struct{ RequestID string }

func (e *RequestNotFoundError) Error() string {
	return fmt.Sprintf("barter request '%s' not found", e.RequestID)
}
func (e *RequestNotFoundError) Is(target error) bool { return target == ErrNotFound }

// TransitionError reports an action that the transition table does not allow.
type TransitionError struct {
	Status string
	Party  string
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot %s a barter request in status '%s'", e.Party, e.Action, e.Status)
}
func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type NotReadyError struct{ Status string }

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("barter request in status '%s' cannot be completed", e.Status)
}
func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady || target == ErrInvalidTransition
}

type BarterAlreadyExistsError struct{ ListingID string }

func (e *BarterAlreadyExistsError) Error() string {
	return fmt.Sprintf("an open barter request for listing '%s' already exists", e.ListingID)
}
func (e *BarterAlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

type UserAlreadyExistsError struct{ Email string }

func (e *UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with email '%s' already exists", e.Email)
}
func (e *UserAlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }
