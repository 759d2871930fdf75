package task

import (
	"context"
	"fmt"
	"time"

	"github.com/edvald/garden-1/internal/module"
	"github.com/edvald/garden-1/internal/plugin"
)

// BuildParams configures a BuildTask.
type BuildParams struct {
	Context *plugin.Context
	Module  *module.Module
	// Force rebuilds even when the current version is already built.
	Force bool
}

// BuildTask builds a module through its provider.
type BuildTask struct {
	pctx    *plugin.Context
	module  *module.Module
	force   bool
	version module.TreeVersion
}

// NewBuildTask computes the module version and returns a ready task.
func NewBuildTask(ctx context.Context, params BuildParams) (*BuildTask, error) {
	if params.Context == nil || params.Module == nil {
		return nil, fmt.Errorf("build task requires a plugin context and a module")
	}
	version, err := params.Context.Modules.Version(ctx, params.Module)
	if err != nil {
		return nil, err
	}
	return &BuildTask{
		pctx:    params.Context,
		module:  params.Module,
		force:   params.Force,
		version: version,
	}, nil
}

func (t *BuildTask) Type() Type { return TypeBuild }
func (t *BuildTask) Name() string { return t.module.Name }
func (t *BuildTask) Key() string { return Key(TypeBuild, t.Name()) }
func (t *BuildTask) Version() module.TreeVersion { return t.version }
func (t *BuildTask) Module() *module.Module { return t.module }
func (t *BuildTask) Force() bool { return t.force }

func (t *BuildTask) Description() string {
	return fmt.Sprintf("building module %s", t.module.Name)
}

// Dependencies returns a BuildTask per declared build dependency, carrying the
// same force flag.
func (t *BuildTask) Dependencies(ctx context.Context) ([]Task, error) {
	if t.version.IsZero() {
		return nil, ErrUnversioned
	}

	mods, err := t.pctx.Modules.BuildDependencies(t.module)
	if err != nil {
		return nil, err
	}

	deps := make([]Task, 0, len(mods))
	for _, m := range mods {
		dep, err := NewBuildTask(ctx, BuildParams{Context: t.pctx, Module: m, Force: t.force})
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// Process builds the module unless its current version is already built and
// the task is not forced.
func (t *BuildTask) Process(ctx context.Context) (*Result, error) {
	if t.version.IsZero() {
		return nil, ErrUnversioned
	}
	res := NewResult(t)

	if !t.force {
		status, err := t.pctx.GetModuleBuildStatus(ctx, t.module, t.version)
		if err != nil {
			return nil, err
		}
		if status.Ready {
			t.pctx.Log.Info(t.module.Name, "Already built").Stop()
			res.SkipReason = SkipReasonUpToDate
			return res.finish(StatusSkipped, plugin.BuildResult{Fresh: false, Version: t.version.String()}, "Already built"), nil
		}
	}

	entry := t.pctx.Log.Info(t.module.Name, "Building")
	start := time.Now()

	out, err := t.pctx.BuildModule(ctx, plugin.BuildModuleParams{
		Module:   t.module,
		Version:  t.version,
		LogEntry: entry,
	})
	if err != nil {
		entry.SetError(err.Error())
		return nil, err
	}

	msg := fmt.Sprintf("Done (took %.1f sec)", time.Since(start).Seconds())
	entry.SetSuccess(msg)
	return res.finish(StatusSuccess, out, msg), nil
}
