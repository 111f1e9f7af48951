package util_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oszuidwest/zwfm-screengrab/internal/util"
)

func TestExtractLastError(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{"empty", "", ""},
		{"trailing blank lines", "first\nsecond\n\n  \n", "second"},
		{"component prefix", "[x11grab @ 0x55d0c8a4c0] Cannot open display :9, error 1.\n", "Cannot open display :9, error 1."},
		{"prefix only line skipped", "real problem\n[alsa @ 0x1f]   \n", "real problem"},
		{"truncated", strings.Repeat("x", 250), strings.Repeat("x", 200) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := util.ExtractLastError(tt.stderr); got != tt.want {
				t.Fatalf("ExtractLastError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	if util.WrapError("start", nil) != nil {
		t.Fatal("expected nil for nil error")
	}
	base := errors.New("denied")
	err := util.WrapError("open output", base)
	if !errors.Is(err, base) || err.Error() != "failed to open output: denied" {
		t.Fatalf("unexpected wrapped error: %v", err)
	}
}

func TestResolveFFmpegPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg-custom")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}

	got, err := util.ResolveFFmpegPath(bin)
	if err != nil || got != bin {
		t.Fatalf("ResolveFFmpegPath(custom) = %q, %v", got, err)
	}

	_, err = util.ResolveFFmpegPath(filepath.Join(dir, "missing"))
	if !errors.Is(err, util.ErrFFmpegNotFound) {
		t.Fatalf("expected ErrFFmpegNotFound, got %v", err)
	}
}

func TestIsConfigured(t *testing.T) {
	if !util.IsConfigured("a", "b") {
		t.Fatal("expected configured")
	}
	if util.IsConfigured("a", "") {
		t.Fatal("expected not configured")
	}
}
