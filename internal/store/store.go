package store

import (
	"context"
	"time"
)

// VersionStore records which module version was last built.
type VersionStore interface {
	// GetBuildVersion returns the last recorded build of a module. ok is false
	// when the module was never built.
	GetBuildVersion(ctx context.Context, moduleName string) (rec BuildRecord, ok bool, err error)
	SetBuildVersion(ctx context.Context, moduleName string, rec BuildRecord) error
	Close() error
}

// BuildRecord is the stored state of one module build.
type BuildRecord struct {
	Version string    `json:"version"`
	BuiltAt time.Time `json:"builtAt"`
}
