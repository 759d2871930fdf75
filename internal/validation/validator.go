package validation

import (
	"fmt"
	"regexp"
	"strings"

	gerrors "github.com/edvald/garden-1/internal/errors"
)

// MaxIdentifierLength is the longest accepted project, module or service name.
const MaxIdentifierLength = 63

var identifierRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ValidationResult represents the result of an identifier check
type ValidationResult struct {
	Valid  bool
	Reason string
}

// CheckIdentifier checks name against the identifier grammar: lowercase
// letters, digits and single dashes, starting with a letter and not ending
// with a dash.
func CheckIdentifier(name string) ValidationResult {
	switch {
	case name == "":
		return ValidationResult{Valid: false, Reason: "name cannot be empty"}
	case len(name) > MaxIdentifierLength:
		return ValidationResult{
			Valid:  false,
			Reason: fmt.Sprintf("name must be at most %d characters", MaxIdentifierLength),
		}
	case strings.Contains(name, "--"):
		return ValidationResult{Valid: false, Reason: "name cannot contain consecutive dashes"}
	case !identifierRegex.MatchString(name):
		return ValidationResult{
			Valid:  false,
			Reason: "name must start with a lowercase letter and contain only lowercase letters, digits and dashes",
		}
	}
	return ValidationResult{Valid: true}
}

// ValidateIdentifier returns a validation error naming kind ("project",
// "module", ...) when name is not a valid identifier.
func ValidateIdentifier(name, kind string) error {
	res := CheckIdentifier(name)
	if res.Valid {
		return nil
	}
	return gerrors.NewInvalidIdentifierError(name, kind, fmt.Errorf("%s", res.Reason))
}

// NamedIdentifier pairs a name with the kind it is validated as.
type NamedIdentifier struct {
	Name string
	Kind string
}

// ValidateAll checks every identifier and returns the first failure, so callers
// can validate a whole batch before touching the filesystem.
func ValidateAll(ids []NamedIdentifier) error {
	for _, id := range ids {
		if err := ValidateIdentifier(id.Name, id.Kind); err != nil {
			return err
		}
	}
	return nil
}
