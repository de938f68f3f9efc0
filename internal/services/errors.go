package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures reported by the wallet node CLI itself.
	ErrExternalTool = errors.New("external tool error")
	// ErrUnavailable marks failures to launch the wallet node CLI at all.
	ErrUnavailable = errors.New("daemon unavailable")
	// ErrMalformed marks responses that could not be decoded.
	ErrMalformed = errors.New("malformed response")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures that are safe to retry.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes operation context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
