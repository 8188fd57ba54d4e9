package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"DailyDigest/internal/config"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "dailydigest version dev") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestMissingAPIKeyIsFatal(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--once", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	if err := cmd.Execute(); !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}

func TestUnknownFlagRejected(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--nope"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected unknown flag error")
	}
}
