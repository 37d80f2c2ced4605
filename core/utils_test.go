package core

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	id := NewID("PROJ")
	if !strings.HasPrefix(id, "PROJ_") {
		t.Errorf("NewID() = %q; want PROJ_ prefix", id)
	}
	if hex := strings.TrimPrefix(id, "PROJ_"); len(hex) != 32 || strings.Contains(hex, "-") {
		t.Errorf("NewID() suffix = %q; want 32 hex chars", hex)
	}
	if NewID("PROJ") == id {
		t.Error("NewID() returned the same ID twice")
	}
}

func TestCleanString(t *testing.T) {
	if got := CleanString("  Hello  "); got != "Hello" {
		t.Errorf("CleanString() = %q; want %q", got, "Hello")
	}
	if got := CleanString("  HeLLo ", true); got != "hello" {
		t.Errorf("CleanString(lower) = %q; want %q", got, "hello")
	}
}
