package groups

import (
	"errors"
	"fmt"
)

// ValidationError represents a rejected group operation.
//
// Rejections are synchronous and leave no partial state: the group
// collection is untouched when any of these is returned.
type ValidationError struct {
	// Code identifies the rejection category.
	Code ValidationErrorCode

	// Message is a human-readable description.
	Message string

	// GroupID identifies the affected group, when known.
	GroupID string

	// MemberID identifies the offending member, when known.
	MemberID string
}

// ValidationErrorCode categorizes group operation rejections.
type ValidationErrorCode string

const (
	// ErrCodeCycleDetected indicates the operation would make a group
	// contain itself, directly or through nested groups.
	ErrCodeCycleDetected ValidationErrorCode = "CYCLE_DETECTED"

	// ErrCodeTooFewMembers indicates a group create with fewer than 2 members.
	ErrCodeTooFewMembers ValidationErrorCode = "TOO_FEW_MEMBERS"

	// ErrCodeUnknownMember indicates a member id that resolves to neither
	// a shape nor a group.
	ErrCodeUnknownMember ValidationErrorCode = "UNKNOWN_MEMBER"

	// ErrCodeUnknownGroup indicates an operation on a group id that does
	// not exist.
	ErrCodeUnknownGroup ValidationErrorCode = "UNKNOWN_GROUP"

	// ErrCodeDuplicateMember indicates the same member id twice in a
	// create, or an add of an id already in the group.
	ErrCodeDuplicateMember ValidationErrorCode = "DUPLICATE_MEMBER"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.GroupID != "" && e.MemberID != "":
		return fmt.Sprintf("%s: %s (group=%s, member=%s)", e.Code, e.Message, e.GroupID, e.MemberID)
	case e.GroupID != "":
		return fmt.Sprintf("%s: %s (group=%s)", e.Code, e.Message, e.GroupID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsCycleError returns true if the error is a cycle rejection.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeCycleDetected
	}
	return false
}

// IsValidationError returns true for any group validation rejection.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newCycleError(groupID, memberID string) *ValidationError {
	return &ValidationError{
		Code:     ErrCodeCycleDetected,
		Message:  "membership would make a group contain itself",
		GroupID:  groupID,
		MemberID: memberID,
	}
}
