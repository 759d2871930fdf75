package task

import (
	"bytes"
	"testing"

	"github.com/edvald/garden-1/internal/logger"
	"github.com/edvald/garden-1/internal/module"
	"github.com/edvald/garden-1/internal/plugin"
	"github.com/edvald/garden-1/internal/plugin/mocks"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const testModuleType = "container"

type fixture struct {
	pctx     *plugin.Context
	provider *mocks.MockProvider
	out      *bytes.Buffer
	logs     *logtest.Hook
}

func newFixture(t *testing.T, modules ...*module.Module) *fixture {
	t.Helper()
	reg, err := module.NewRegistry(modules...)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logger.CLIFormatter{DisableTimestamp: true, DisableLevel: true, DisableColors: true})
	logs := logtest.NewLocal(l)

	provider := mocks.NewMockProvider("test", testModuleType)
	pctx, err := plugin.NewContext(t.TempDir(), logger.NewEntry(l), reg, provider)
	require.NoError(t, err)

	return &fixture{pctx: pctx, provider: provider, out: out, logs: logs}
}

func (f *fixture) module(t *testing.T, name string) *module.Module {
	t.Helper()
	m, err := f.pctx.Modules.Get(name)
	require.NoError(t, err)
	return m
}

// lastLine returns the most recent line logged through the root entry.
func (f *fixture) lastLine(t *testing.T) *logrus.Entry {
	t.Helper()
	line := f.logs.LastEntry()
	require.NotNil(t, line)
	return line
}

func mod(name string, allowPush bool, deps ...string) *module.Module {
	return &module.Module{
		Name:      name,
		Type:      testModuleType,
		AllowPush: allowPush,
		Build:     module.BuildSpec{Dependencies: deps},
	}
}
