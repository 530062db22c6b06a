package config

import (
	"testing"
)

func TestInitialize(t *testing.T) {
	reset()
	t.Cleanup(reset)

	path := writeConfig(t, "model:\n  path: ./first.yaml\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := GetConfig().Model.Path; got != "./first.yaml" {
		t.Errorf("model path = %q", got)
	}

	// Later calls are ignored.
	other := writeConfig(t, "model:\n  path: ./second.yaml\n")
	if err := Initialize(other); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := GetConfig().Model.Path; got != "./first.yaml" {
		t.Errorf("model path after second Initialize = %q", got)
	}
}

func TestInitialize_Error(t *testing.T) {
	reset()
	t.Cleanup(reset)

	if err := Initialize(writeConfig(t, "history:\n  backend: nope\n")); err == nil {
		t.Fatal("expected error")
	}
	if GetConfig() != nil {
		t.Error("config should stay nil after a failed Initialize")
	}
}

func TestReloadConfig(t *testing.T) {
	reset()
	t.Cleanup(reset)

	SetConfig(Default())
	path := writeConfig(t, "model:\n  path: ./reloaded.yaml\n")
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if got := GetConfig().Model.Path; got != "./reloaded.yaml" {
		t.Errorf("model path = %q", got)
	}

	bad := writeConfig(t, "telemetry:\n  logging:\n    level: loud\n")
	if err := ReloadConfig(bad); err == nil {
		t.Fatal("expected reload error")
	}
	if got := GetConfig().Model.Path; got != "./reloaded.yaml" {
		t.Errorf("config changed after failed reload: %q", got)
	}
}

func TestMustGetConfig(t *testing.T) {
	reset()
	t.Cleanup(reset)

	defer func() {
		if recover() == nil {
			t.Error("expected panic before Initialize")
		}
	}()
	MustGetConfig()
}
