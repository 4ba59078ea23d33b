package gitsource

import (
	"context"
	"time"

	"github.com/clintrovert/relativity/pkg/types"
)

// Source yields the commits of one repository authored within an
// inclusive date window. Access is read-only.
type Source interface {
	// Label identifies the repository in report provenance.
	Label() string
	// CommitsBetween returns commits authored in [start, end].
	CommitsBetween(ctx context.Context, start, end time.Time) ([]types.CommitRecord, error)
}

// withinWindow reports whether the authored time falls inside the
// inclusive [start, end] window.
func withinWindow(authored, start, end time.Time) bool {
	return !authored.Before(start) && !authored.After(end)
}
