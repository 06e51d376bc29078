package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, level LogLevel) *Logger {
	return New(Config{Level: level, Output: buf})
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, WARN)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below WARN were written: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestNamedSharesSink(t *testing.T) {
	var buf bytes.Buffer
	root := newTestLogger(&buf, INFO)
	child := root.Named("scan")

	child.Infof("accepted %s", "ean13")
	if !strings.Contains(buf.String(), "[INFO] [scan] accepted ean13") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	root.SetLevel(ERROR)
	buf.Reset()
	child.Infof("hidden")
	if buf.Len() != 0 {
		t.Errorf("child ignored parent level change: %q", buf.String())
	}

	grandchild := child.Named("journal")
	grandchild.Errorf("boom")
	if !strings.Contains(buf.String(), "[scan] [journal] boom") {
		t.Errorf("unexpected nested prefix: %q", buf.String())
	}
}

func TestFatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, INFO)
	code := -1
	l.sink.exit = func(c int) { code = c }

	l.Fatalf("bye")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{"debug": DEBUG, "INFO": INFO, "warning": WARN, " error ": ERROR, "fatal": FATAL}
	for in, want := range tests {
		got, ok := ParseLevel(in)
		if !ok || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Error("ParseLevel accepted an unknown level")
	}
}
