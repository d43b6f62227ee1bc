package goChmod

import (
	"errors"

	"github.com/xvzf/goChmod/permission"
)

var (
	// ErrPermissionDenied is returned when none of the owner, group or other
	// bits grant access.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidMode is returned for modes using bits beyond owner/group/other.
	ErrInvalidMode = permission.ErrInvalidMode
	// ErrOwnershipRequired is returned by OwnershipSpec when neither owner nor group is given.
	ErrOwnershipRequired = errors.New("at least one of owner and group is required")
	// ErrNilApp is returned when binding a nil application.
	ErrNilApp = errors.New("nil application")
	// ErrAppAlreadyBound is returned when binding a second, different application.
	ErrAppAlreadyBound = errors.New("permission manager already bound to another application")
	// ErrManagerNotBound is returned when routes are registered before an application was bound.
	ErrManagerNotBound = errors.New("permission manager not bound to an application")
	// ErrManagerNotReady is returned by methods called on a nil Manager.
	ErrManagerNotReady = errors.New("permission manager not initialized")
	// ErrGroupLookupUnavailable wraps group resolver failures.
	ErrGroupLookupUnavailable = errors.New("group lookup unavailable")
)
