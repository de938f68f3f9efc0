package aegisum

import (
	"fmt"

	"aegminer/internal/services"
)

// DaemonError reports a non-zero exit from the wallet node CLI.
type DaemonError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *DaemonError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("aegisum %s: exit %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("aegisum %s: exit %d", e.Command, e.ExitCode)
}

// Is classifies the error under the shared external-tool marker.
func (e *DaemonError) Is(target error) bool {
	return target == services.ErrExternalTool
}

// UnavailableError reports that the wallet node CLI could not be launched.
type UnavailableError struct {
	Binary string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("aegisum cli %q unavailable: %v", e.Binary, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is classifies the error under the shared unavailability marker.
func (e *UnavailableError) Is(target error) bool {
	return target == services.ErrUnavailable
}

// MalformedResponseError reports daemon output that could not be decoded into
// the expected shape.
type MalformedResponseError struct {
	Command string
	Reason  string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("aegisum %s: malformed response: %s: %v", e.Command, e.Reason, e.Err)
	}
	return fmt.Sprintf("aegisum %s: malformed response: %s", e.Command, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Is classifies the error under the shared malformed-response marker.
func (e *MalformedResponseError) Is(target error) bool {
	return target == services.ErrMalformed
}
