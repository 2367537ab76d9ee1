package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"stakePool/internal/model"
)

// Entry is one request read from the input, with its source line.
type Entry struct {
	Line    int
	Request model.Request
}

// ReadRequests loads request records from a JSONL file. Blank lines and lines
// starting with '#' are ignored.
func ReadRequests(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var req model.Request
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		entries = append(entries, Entry{Line: line, Request: req})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan requests: %w", err)
	}
	return entries, nil
}
