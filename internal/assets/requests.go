package assets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Request is one asset name asked for by the caller. Only the filename
// matters for matching; any path prefix on the input line is discarded.
type Request struct {
	// Filename is the bare asset filename as written in the list.
	Filename string
	// Line is the 1-based line number in the request list, kept for
	// diagnostics.
	Line int
}

// ParseRequests reads a request list, one asset per line. Lines are
// whitespace-trimmed, blank lines are skipped, and embedded path components
// are stripped so only the filename remains. Duplicate names are preserved
// positionally, each producing its own request.
func ParseRequests(r io.Reader) ([]Request, error) {
	var requests []Request
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		name := filepath.Base(filepath.FromSlash(raw))
		if name == "." || name == string(filepath.Separator) {
			continue
		}
		requests = append(requests, Request{Filename: name, Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read request list: %w", err)
	}
	return requests, nil
}

// ParseRequestFile opens and parses a request list file.
func ParseRequestFile(path string) ([]Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open request list: %w", err)
	}
	defer file.Close()
	return ParseRequests(file)
}
