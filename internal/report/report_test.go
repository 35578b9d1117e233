package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, "0b5fca12-3c44-4a55-b661-0d1c8e1f2a3b", "# Report\n\nFindings.")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("report written outside results dir: %s", path)
	}
	if !strings.Contains(filepath.Base(path), "0b5fca12") {
		t.Errorf("file name missing session id prefix: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "# Report\n\nFindings." {
		t.Errorf("content = %q", data)
	}
}

func TestWriteEmptyContent(t *testing.T) {
	if _, err := Write(t.TempDir(), "id", "   "); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestWriteCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	if _, err := Write(dir, "abc", "content"); err != nil {
		t.Fatalf("Write into missing dir: %v", err)
	}
}
