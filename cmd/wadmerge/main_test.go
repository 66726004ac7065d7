package main

import (
	"path/filepath"
	"testing"
)

func TestConfirmOverwriteSkipsPromptForNonexistentPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.wad")

	ok, err := confirmOverwrite(path)
	if err != nil {
		t.Fatalf("confirmOverwrite: %v", err)
	}
	if !ok {
		t.Fatal("confirmOverwrite() = false; want true for a nonexistent destination")
	}
}
