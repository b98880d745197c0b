package extractor

import (
	"os"
	"strings"
	"testing"
)

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	return len(strings.Split(strings.TrimSpace(string(data)), "\n"))
}
