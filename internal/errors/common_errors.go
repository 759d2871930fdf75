package errors

import (
	"errors"
	"fmt"
)

// Common error codes
const (
	CodeInvalidIdentifier = "001"
	CodeInvalidConfig     = "002"

	CodeSDKNotInstalled   = "001"
	CodeUnknownModuleType = "002"
	CodeConfigNotFound    = "003"

	CodeModuleNotFound    = "001"
	CodeDirectoryNotFound = "002"
	CodeInvalidParameter  = "003"

	CodeTaskFailed = "001"
)

// Category sentinels for use with errors.Is.
var (
	ErrValidation    = &GardenError{Category: ErrorCategoryValidation}
	ErrConfiguration = &GardenError{Category: ErrorCategoryConfiguration}
	ErrParameter     = &GardenError{Category: ErrorCategoryParameter}
	ErrTask          = &GardenError{Category: ErrorCategoryTask}
)

// NewInvalidIdentifierError reports a name that does not match the identifier grammar.
func NewInvalidIdentifierError(name, kind string, cause error) *GardenError {
	return NewValidationError(CodeInvalidIdentifier,
		fmt.Sprintf("%s is an invalid %s name", name, kind),
		fmt.Sprintf("Validate %s name", kind)).
		WithContext(kind, name).
		WithOriginalError(cause).
		WithTroubleshooting(
			"Names must start with a lowercase letter",
			"Use only lowercase letters, digits and single dashes",
			"Names may not end with a dash and must be at most 63 characters",
		)
}

// NewSDKNotInstalledError reports a required external command-line SDK that is missing.
func NewSDKNotInstalledError(sdk, installURL string) *GardenError {
	return NewConfigurationError(CodeSDKNotInstalled,
		fmt.Sprintf("%s is not installed. Please visit %s for installation instructions.", sdk, installURL),
		"Configure environment").
		WithContext("sdk", sdk).
		WithTroubleshooting(
			fmt.Sprintf("Install %s from %s", sdk, installURL),
			"Make sure the SDK binary is on your PATH",
			"Run 'garden env configure' again after installing",
		)
}

// NewUnknownModuleTypeError reports a module whose type no configured provider handles.
func NewUnknownModuleTypeError(moduleName, moduleType string) *GardenError {
	return NewConfigurationError(CodeUnknownModuleType,
		fmt.Sprintf("No provider handles module type '%s' (module %s)", moduleType, moduleName),
		"Resolve module provider").
		WithContext("module", moduleName).
		WithContext("type", moduleType).
		WithTroubleshooting(
			"Check the type field in the module's garden.yml",
			"Add the provider for this module type to the project's garden.yml",
		)
}

// NewConfigNotFoundError reports a missing project configuration.
func NewConfigNotFoundError(path string) *GardenError {
	return NewConfigurationError(CodeConfigNotFound,
		fmt.Sprintf("Could not find a project garden.yml at %s", path),
		"Load project").
		WithContext("path", path).
		WithTroubleshooting(
			"Run 'garden new' to scaffold a project",
			"Use --root to point at an existing project",
		)
}

// NewModuleNotFoundError reports a module name that is not part of the project.
func NewModuleNotFoundError(name string) *GardenError {
	return NewParameterError(CodeModuleNotFound,
		fmt.Sprintf("Could not find module '%s'", name),
		"Resolve module").
		WithContext("module", name).
		WithTroubleshooting("Check the module name against the project's garden.yml files")
}

// NewDirectoryNotFoundError reports a directory option that does not exist.
func NewDirectoryNotFoundError(dir string) *GardenError {
	return NewParameterError(CodeDirectoryNotFound,
		fmt.Sprintf("Module directory %s not found", dir),
		"Scan module directories").
		WithContext("directory", dir)
}

// NewTaskFailedError wraps an error returned while resolving or processing a task.
// The original error stays reachable through errors.Is/As.
func NewTaskFailedError(taskKey string, originalErr error) *GardenError {
	return NewGardenError(ErrorCategoryTask, CodeTaskFailed,
		fmt.Sprintf("Task %s failed", taskKey),
		"Process task").
		WithContext("task", taskKey).
		WithOriginalError(originalErr)
}

// IsUserError determines if an error is due to user input or configuration
func IsUserError(err error) bool {
	var gErr *GardenError
	if errors.As(err, &gErr) {
		return gErr.Category == ErrorCategoryValidation ||
			gErr.Category == ErrorCategoryConfiguration ||
			gErr.Category == ErrorCategoryParameter
	}
	return false
}

// GetErrorCode extracts the error code for reporting
func GetErrorCode(err error) string {
	var gErr *GardenError
	if errors.As(err, &gErr) {
		return fmt.Sprintf("%s-%s", gErr.Category, gErr.Code)
	}
	return "UNKNOWN"
}
