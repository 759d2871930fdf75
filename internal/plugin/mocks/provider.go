package mocks

import (
	"context"

	"github.com/edvald/garden-1/internal/plugin"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a testify mock of plugin.Provider.
type MockProvider struct {
	mock.Mock
	ProviderName string
	Types        []string
}

var _ plugin.Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock handling the given module types.
func NewMockProvider(name string, types ...string) *MockProvider {
	return &MockProvider{ProviderName: name, Types: types}
}

func (m *MockProvider) Name() string {
	return m.ProviderName
}

func (m *MockProvider) ModuleTypes() []string {
	return m.Types
}

func (m *MockProvider) GetEnvironmentStatus(ctx context.Context) (plugin.EnvironmentStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(plugin.EnvironmentStatus), args.Error(1)
}

func (m *MockProvider) ConfigureEnvironment(ctx context.Context, params plugin.ConfigureParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockProvider) GetModuleBuildStatus(ctx context.Context, params plugin.BuildStatusParams) (plugin.BuildStatus, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(plugin.BuildStatus), args.Error(1)
}

func (m *MockProvider) BuildModule(ctx context.Context, params plugin.BuildModuleParams) (plugin.BuildResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(plugin.BuildResult), args.Error(1)
}

func (m *MockProvider) PushModule(ctx context.Context, params plugin.PushModuleParams) (plugin.PushResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(plugin.PushResult), args.Error(1)
}
