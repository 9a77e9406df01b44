package common

import (
	"errors"
	"fmt"
)

// PermissionDenied reports a mutation or action attempted without the
// required grant. It carries enough detail for UIs to explain exactly which
// permission was missing.
type PermissionDenied struct {
	Accessor   string
	Target     string
	Permission string
	Scope      string
}

func (e *PermissionDenied) Error() string {
	return fmt.Sprintf("permission denied: accessor '%s' lacks '%s' on '%s' (scope '%s')",
		e.Accessor, e.Permission, e.Target, e.Scope)
}

// NewPermissionDenied builds a PermissionDenied error.
func NewPermissionDenied(accessor, target, permission, scope string) error {
	return &PermissionDenied{Accessor: accessor, Target: target, Permission: permission, Scope: scope}
}

// AccessDenied reports a read attempted without visibility. It is distinct
// from PermissionDenied so read paths can surface "not found" instead of
// "forbidden" and avoid confirming existence to unauthorized users.
type AccessDenied struct {
	Accessor string
	Item     string
}

func (e *AccessDenied) Error() string {
	return fmt.Sprintf("access denied: accessor '%s' cannot read item '%s'", e.Accessor, e.Item)
}

// NewAccessDenied builds an AccessDenied error.
func NewAccessDenied(accessor, item string) error {
	return &AccessDenied{Accessor: accessor, Item: item}
}

// ItemNotFound reports a referenced accessor, scope or target vertex that
// does not exist. The graph backends generate it; the engine propagates it
// unchanged.
type ItemNotFound struct {
	ID string
}

func (e *ItemNotFound) Error() string {
	return fmt.Sprintf("404 Not Found: %s", e.ID)
}

// NewErrNotFound builds an ItemNotFound error for the given identifier.
func NewErrNotFound(id string) error {
	return &ItemNotFound{ID: id}
}

// IsPermissionDenied reports whether err is (or wraps) a PermissionDenied.
func IsPermissionDenied(err error) bool {
	var pd *PermissionDenied
	return errors.As(err, &pd)
}

// IsAccessDenied reports whether err is (or wraps) an AccessDenied.
func IsAccessDenied(err error) bool {
	var ad *AccessDenied
	return errors.As(err, &ad)
}

// IsErrNotFound reports whether err is (or wraps) an ItemNotFound.
func IsErrNotFound(err error) bool {
	var nf *ItemNotFound
	return errors.As(err, &nf)
}
