// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.ListenPort != "8080" || cfg.RetrievalTopK != 3 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFileOverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "listen_port: \"9090\"\nretrieval_top_k: 5\nstructured_timeout: 2s\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenPort != "9090" || cfg.RetrievalTopK != 5 {
		t.Errorf("file overrides not applied: %+v", cfg)
	}
	if cfg.StructuredTimeout != 2*time.Second {
		t.Errorf("duration parse failed: %v", cfg.StructuredTimeout)
	}
	if cfg.HistoryMaxTurns != 20 {
		t.Errorf("unset field lost its default: %d", cfg.HistoryMaxTurns)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("MEDEQUIP_LISTEN_PORT", "7070")
	t.Setenv("MEDEQUIP_RETRIEVAL_TIMEOUT", "3s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenPort != "7070" {
		t.Errorf("env override not applied: %s", cfg.ListenPort)
	}
	if cfg.RetrievalTimeout != 3*time.Second {
		t.Errorf("env duration not applied: %v", cfg.RetrievalTimeout)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("structured_timeout: soon\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("invalid duration accepted")
	}
}
