package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Write saves a finished report under resultsDir and returns the file path.
// Files are named by timestamp and session id so repeated runs never clash.
func Write(resultsDir, sessionID, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("report content is empty")
	}

	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.md", time.Now().Format("20060102_150405"), shortID(sessionID))
	path := filepath.Join(resultsDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "report"
	}
	return id
}
