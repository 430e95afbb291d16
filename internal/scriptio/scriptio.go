// Package scriptio reads scripts from plain text and JSONL batch files.
package scriptio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Script is one entry of a batch file.
type Script struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"script"`
}

// maxLine bounds one JSONL record.
const maxLine = 4 << 20

// LoadText reads a single script file as one Script named after the file.
func LoadText(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read file %s: %w", path, err)
	}
	return Script{ID: path, Body: string(data)}, nil
}

// LoadJSONL loads scripts from a JSONL file. Malformed lines are skipped
// with a warning; a file without any valid script is an error. Entries
// without an id are numbered by line.
func LoadJSONL(path string, logger *zap.Logger) ([]Script, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	var scripts []Script
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64<<10), maxLine)

	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var s Script
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			logger.Warn("skipping malformed JSON line",
				zap.String("path", path), zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		if strings.TrimSpace(s.Body) == "" {
			logger.Warn("skipping entry without script",
				zap.String("path", path), zap.Int("line", lineNo))
			continue
		}
		if s.ID == "" {
			s.ID = strconv.Itoa(lineNo)
		}
		scripts = append(scripts, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	if len(scripts) == 0 {
		return nil, fmt.Errorf("no valid scripts found in %s", path)
	}
	return scripts, nil
}
