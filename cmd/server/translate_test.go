package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(path, []byte("Merhaba dünya."), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := readInput(nil, path)
	if err != nil || got != "Merhaba dünya." {
		t.Errorf("file: got %q, %v", got, err)
	}

	got, err = readInput(strings.NewReader("from stdin."), "-")
	if err != nil || got != "from stdin." {
		t.Errorf("stdin: got %q, %v", got, err)
	}

	for _, blank := range []string{"", "  \n\t\n", strings.Repeat(" \n", 2000)} {
		if _, err := readInput(strings.NewReader(blank), "-"); err == nil {
			t.Errorf("expected error for blank input of %d bytes", len(blank))
		}
	}
	if _, err := readInput(nil, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
