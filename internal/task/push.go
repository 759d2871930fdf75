package task

import (
	"context"
	"fmt"

	"github.com/edvald/garden-1/internal/module"
	"github.com/edvald/garden-1/internal/plugin"
)

// PushParams configures a PushTask.
type PushParams struct {
	Context *plugin.Context
	Module  *module.Module
	// ForceBuild is passed as Force to the BuildTask this push depends on.
	ForceBuild bool
}

// PushTask publishes a built module through its provider.
type PushTask struct {
	pctx       *plugin.Context
	module     *module.Module
	forceBuild bool
	version    module.TreeVersion
}

// NewPushTask computes the module version and returns a ready task.
func NewPushTask(ctx context.Context, params PushParams) (*PushTask, error) {
	if params.Context == nil || params.Module == nil {
		return nil, fmt.Errorf("push task requires a plugin context and a module")
	}
	version, err := params.Context.Modules.Version(ctx, params.Module)
	if err != nil {
		return nil, err
	}
	return &PushTask{
		pctx:       params.Context,
		module:     params.Module,
		forceBuild: params.ForceBuild,
		version:    version,
	}, nil
}

func (t *PushTask) Type() Type { return TypePush }
func (t *PushTask) Name() string { return t.module.Name }
func (t *PushTask) Key() string { return Key(TypePush, t.Name()) }
func (t *PushTask) Version() module.TreeVersion { return t.version }
func (t *PushTask) Module() *module.Module { return t.module }
func (t *PushTask) ForceBuild() bool { return t.forceBuild }

func (t *PushTask) Description() string {
	return fmt.Sprintf("pushing module %s", t.module.Name)
}

// Dependencies is empty when the module does not allow pushing. Otherwise it
// is the module's BuildTask.
func (t *PushTask) Dependencies(ctx context.Context) ([]Task, error) {
	if t.version.IsZero() {
		return nil, ErrUnversioned
	}
	if !t.module.AllowPush {
		return []Task{}, nil
	}

	build, err := NewBuildTask(ctx, BuildParams{Context: t.pctx, Module: t.module, Force: t.forceBuild})
	if err != nil {
		return nil, err
	}
	return []Task{build}, nil
}

// Process publishes the module. A provider that declines still yields a
// successful result, with the entry marked as a warning.
func (t *PushTask) Process(ctx context.Context) (*Result, error) {
	if t.version.IsZero() {
		return nil, ErrUnversioned
	}
	res := NewResult(t)

	if !t.module.AllowPush {
		t.pctx.Log.Info(t.module.Name, "Push disabled").Stop()
		return res.finish(StatusSuccess, plugin.PushResult{Pushed: false}, "Push disabled"), nil
	}

	entry := t.pctx.Log.Info(t.module.Name, "Pushing")

	out, err := t.pctx.PushModule(ctx, plugin.PushModuleParams{
		ModuleName: t.module.Name,
		LogEntry:   entry,
	})
	if err != nil {
		entry.SetError(err.Error())
		return nil, err
	}

	if out.Pushed {
		msg := out.Message
		if msg == "" {
			msg = "Ready"
		}
		entry.SetSuccess(msg)
	} else {
		entry.SetWarn(out.Message)
	}
	return res.finish(StatusSuccess, out, out.Message), nil
}
