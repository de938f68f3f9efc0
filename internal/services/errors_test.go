package services_test

import (
	"errors"
	"testing"

	"aegminer/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "aegisum", "getbalance", "command failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapBuildsDetail(t *testing.T) {
	err := services.Wrap(services.ErrMalformed, "aegisum", "getmininginfo", "missing field", nil)
	want := "malformed response: aegisum: getmininginfo: missing field"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}
