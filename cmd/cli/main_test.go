//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"strings"
	"testing"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/frame"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/session"
)

func TestParseRect(t *testing.T) {
	got, err := parseRect("40, 200,300,300.5")
	if err != nil {
		t.Fatalf("parseRect: %v", err)
	}
	want := frame.Rect{X: 40, Y: 200, Width: 300, Height: 300.5}
	if got != want {
		t.Errorf("parseRect = %v, want %v", got, want)
	}

	for _, bad := range []string{"1,2,3", "a,b,c,d", ""} {
		if _, err := parseRect(bad); err == nil {
			t.Errorf("parseRect(%q) accepted", bad)
		}
	}
}

func TestSplitPositional(t *testing.T) {
	pos, flags := splitPositional([]string{"session.jsonl", "--persist", "extra"})
	if len(pos) != 1 || pos[0] != "session.jsonl" {
		t.Errorf("positional = %v", pos)
	}
	if len(flags) != 2 || flags[0] != "--persist" {
		t.Errorf("flags = %v", flags)
	}

	pos, flags = splitPositional([]string{"a", "b"})
	if len(pos) != 2 || flags != nil {
		t.Errorf("got %v, %v", pos, flags)
	}
}

func TestDescribeOutcome(t *testing.T) {
	if s := describeOutcome(session.Outcome{Kind: session.KindTouchStart}); s != "" {
		t.Errorf("quiet event described as %q", s)
	}
	if s := describeOutcome(session.Outcome{Kind: session.KindScan, Decision: "reject", Reason: "duplicate scan"}); !strings.Contains(s, "duplicate scan") {
		t.Errorf("reject described as %q", s)
	}
	s := describeOutcome(session.Outcome{Kind: session.KindCapture, Zoom: 0.5, Crop: &frame.Rect{X: 1, Y: 2, Width: 3, Height: 4}})
	if !strings.Contains(s, "crop") {
		t.Errorf("capture described as %q", s)
	}
}
