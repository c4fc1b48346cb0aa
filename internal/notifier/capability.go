package notifier

import (
	"context"
	"errors"
)

// Permission mirrors the three states an OS notification permission can be in.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ErrPermissionDenied is returned by Show when notifications are not granted.
var ErrPermissionDenied = errors.New("notification permission not granted")

// Capability is a place notifications can be delivered to.
type Capability interface {
	Permission() Permission
	// RequestPermission resolves a default permission to granted or denied and returns the result.
	RequestPermission(ctx context.Context) Permission
	Show(ctx context.Context, title, body string) error
}
