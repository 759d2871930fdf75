package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DisplayErrorSummary provides a brief summary of the error for logs
func DisplayErrorSummary(err error) string {
	var gErr *GardenError
	if errors.As(err, &gErr) {
		return fmt.Sprintf("%s-%s: %s", gErr.Category, gErr.Code, gErr.Message)
	}

	errStr := err.Error()
	if len(errStr) > 100 {
		return errStr[:97] + "..."
	}
	return errStr
}

// ShouldDisplayTroubleshooting determines if troubleshooting info should be shown
func ShouldDisplayTroubleshooting(err error) bool {
	var gErr *GardenError
	if errors.As(err, &gErr) {
		return len(gErr.Troubleshooting) > 0
	}
	return false
}

// FormatForCLI formats an error for command-line display
func FormatForCLI(err error) string {
	var gErr *GardenError
	if !errors.As(err, &gErr) {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n%s Error [%s-%s]\n", titleCase(string(gErr.Category)), gErr.Category, gErr.Code))
	sb.WriteString(fmt.Sprintf("  %s\n", gErr.Message))

	if gErr.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nFailed Operation: %s\n", gErr.Operation))
	}

	if len(gErr.Context) > 0 {
		keys := make([]string, 0, len(gErr.Context))
		for k := range gErr.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\nDetails:\n")
		for _, key := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, gErr.Context[key]))
		}
	}

	if len(gErr.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range gErr.Troubleshooting {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	if gErr.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", gErr.OriginalError))
	}

	return sb.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
