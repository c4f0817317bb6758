package ui

import (
	"strings"
	"testing"
)

func TestColorizeWithoutColor(t *testing.T) {
	if got := Colorize("Sodium", 0); got != "Sodium" {
		t.Fatalf("Colorize with no color = %q, want plain text", got)
	}
}

func TestColorizeKeepsText(t *testing.T) {
	got := Colorize("Sodium", 0x4ec9b0)
	if !strings.Contains(got, "Sodium") {
		t.Fatalf("Colorize dropped the text: %q", got)
	}
}
