package task

import (
	"context"
	"errors"
	"testing"

	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildTask_Dependencies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, mod("api", false, "util", "lib"), mod("lib", false), mod("util", false))

	bt, err := NewBuildTask(ctx, BuildParams{Context: f.pctx, Module: f.module(t, "api"), Force: true})
	require.NoError(t, err)

	deps, err := bt.Dependencies(ctx)
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "build.util", deps[0].Key())
	assert.Equal(t, "build.lib", deps[1].Key())
	for _, d := range deps {
		assert.True(t, d.(*BuildTask).Force())
	}

	again, err := bt.Dependencies(ctx)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, deps[0].Key(), again[0].Key())
	assert.Equal(t, deps[0].Version(), again[0].Version())
}

func TestBuildTask_SkipsWhenReady(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, mod("api", false))
	f.provider.On("GetModuleBuildStatus", mock.Anything, mock.Anything).Return(plugin.BuildStatus{Ready: true}, nil).Once()

	bt, err := NewBuildTask(ctx, BuildParams{Context: f.pctx, Module: f.module(t, "api")})
	require.NoError(t, err)

	res, err := bt.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, SkipReasonUpToDate, res.SkipReason)
	assert.True(t, res.Succeeded())
	out, ok := res.BuildOutput()
	require.True(t, ok)
	assert.False(t, out.Fresh)

	f.provider.AssertNotCalled(t, "BuildModule", mock.Anything, mock.Anything)
}

func TestBuildTask_BuildsWhenNotReady(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, mod("api", false))
	f.provider.On("GetModuleBuildStatus", mock.Anything, mock.Anything).Return(plugin.BuildStatus{Ready: false}, nil).Once()
	f.provider.On("BuildModule", mock.Anything, mock.Anything).Return(plugin.BuildResult{Fresh: true, BuildLog: "ok"}, nil).Once()

	bt, err := NewBuildTask(ctx, BuildParams{Context: f.pctx, Module: f.module(t, "api")})
	require.NoError(t, err)

	res, err := bt.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "build.api", res.Key)
	assert.Equal(t, bt.Version().String(), res.Version)
	out, _ := res.BuildOutput()
	assert.True(t, out.Fresh)

	line := f.lastLine(t)
	assert.Equal(t, logger.StatusSuccess.String(), line.Data["status"])
	assert.Regexp(t, `^Building → Done \(took \d+\.\d sec\)$`, line.Message)
	f.provider.AssertExpectations(t)
}

func TestBuildTask_ForceSkipsStatusCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, mod("api", false))
	f.provider.On("BuildModule", mock.Anything, mock.Anything).Return(plugin.BuildResult{Fresh: true}, nil).Once()

	bt, err := NewBuildTask(ctx, BuildParams{Context: f.pctx, Module: f.module(t, "api"), Force: true})
	require.NoError(t, err)

	_, err = bt.Process(ctx)
	require.NoError(t, err)
	f.provider.AssertNotCalled(t, "GetModuleBuildStatus", mock.Anything, mock.Anything)
}

func TestBuildTask_ErrorPropagates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, mod("api", false))
	buildErr := errors.New("compile failed")
	f.provider.On("BuildModule", mock.Anything, mock.Anything).Return(plugin.BuildResult{}, buildErr).Once()

	bt, err := NewBuildTask(ctx, BuildParams{Context: f.pctx, Module: f.module(t, "api"), Force: true})
	require.NoError(t, err)

	res, err := bt.Process(ctx)
	assert.Nil(t, res)
	assert.Same(t, buildErr, err)
	assert.Equal(t, logger.StatusError.String(), f.lastLine(t).Data["status"])
}

func TestBuildTask_StatusErrorPropagates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, mod("api", false))
	statusErr := errors.New("store unavailable")
	f.provider.On("GetModuleBuildStatus", mock.Anything, mock.Anything).Return(plugin.BuildStatus{}, statusErr).Once()

	bt, err := NewBuildTask(ctx, BuildParams{Context: f.pctx, Module: f.module(t, "api")})
	require.NoError(t, err)

	_, err = bt.Process(ctx)
	assert.Same(t, statusErr, err)
}

func TestBuildTask_Unversioned(t *testing.T) {
	var zero BuildTask
	_, err := zero.Process(context.Background())
	assert.ErrorIs(t, err, ErrUnversioned)
}

func TestResult(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, mod("api", false))
	bt, err := NewBuildTask(ctx, BuildParams{Context: f.pctx, Module: f.module(t, "api")})
	require.NoError(t, err)

	failed := NewResult(bt).Fail(errors.New("boom"))
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "boom", failed.Message)
	assert.False(t, failed.Succeeded())
	assert.GreaterOrEqual(t, failed.Duration().Nanoseconds(), int64(0))

	skipped := NewResult(bt).Skip(SkipReasonDependencyFailed, "dependency build.lib failed")
	assert.Equal(t, StatusSkipped, skipped.Status)
	assert.False(t, skipped.Succeeded())

	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
