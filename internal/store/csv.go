package store

import (
	"fmt"
	"os"
	"strings"
)

// RowError is a diagnostic for a single malformed row. Loaders collect
// these instead of aborting: a bad row must never take the whole file
// down.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// The backing format is newline-delimited, comma-separated records with
// a header row and no embedded commas or newlines inside field values.
// Each row is tokenized independently so one malformed row only produces
// a diagnostic.

// readRows reads a backing file and returns its data rows (header
// stripped) with 1-based source line numbers attached.
func readRows(path string) (rows [][]string, lines []int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	raw := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for i, line := range raw {
		if i == 0 { // header
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, ","))
		lines = append(lines, i+1)
	}
	return rows, lines, nil
}

// sanitizeField strips the characters the row format cannot carry.
// Customer-supplied free text goes through here before any write.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

// writeFileAtomic writes content via a temp file and rename so a crash
// mid-write cannot leave a truncated backing file.
func writeFileAtomic(path, content string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
