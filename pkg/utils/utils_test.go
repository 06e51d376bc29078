package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	if a == b {
		t.Fatal("two calls returned the same id")
	}
	if !IsUUID(a) {
		t.Errorf("IsUUID(%q) = false", a)
	}
	if IsUUID("kitchen") {
		t.Error("IsUUID accepted a plain word")
	}
}

func TestEnsureParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "foodlens.sqlite3")
	if err := EnsureParentDir(path); err != nil {
		t.Fatalf("EnsureParentDir: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Errorf("parent dir not created: %v", err)
	}
	if err := EnsureParentDir("bare.sqlite3"); err != nil {
		t.Errorf("bare file name: %v", err)
	}
}
