// pkg/ingest/parse.go
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smartwage/hr-ingress/pkg/model"
)

// ParsedFile is the raw content of one CSV upload.
type ParsedFile struct {
	// Headers is the first row, BOM stripped, otherwise untouched.
	Headers []string
	// Records holds every non-empty data row in file order.
	Records []model.RawRecord
	// SkippedEmpty counts fully blank rows that were dropped.
	SkippedEmpty int
}

// ParseFile reads and parses a CSV file from disk.
func ParseFile(path string, maxRows int) (*ParsedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newStructuralError("parse", fmt.Errorf("failed to open input file: %w", err))
	}
	defer f.Close()

	return Parse(f, maxRows)
}

// Parse reads a CSV stream. The first row is the header (line 1); data
// rows are numbered by their position in the file so reported line
// numbers match what the uploader sees in a spreadsheet. Rows shorter
// than the header are padded on access; fully blank rows are skipped.
// Files with more than maxRows data rows are rejected outright.
func Parse(r io.Reader, maxRows int) (*ParsedFile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = false

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, newStructuralError("parse", fmt.Errorf("file is empty"))
	}
	if err != nil {
		return nil, newStructuralError("parse", fmt.Errorf("failed to read header row: %w", err))
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	parsed := &ParsedFile{Headers: headers}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newStructuralError("parse", fmt.Errorf("failed to read row after line %d: %w", line, err))
		}
		line++

		if isBlankRow(row) {
			parsed.SkippedEmpty++
			continue
		}

		parsed.Records = append(parsed.Records, model.RawRecord{
			Line:  line,
			Cells: row,
		})

		if len(parsed.Records) > maxRows {
			return nil, newStructuralError("parse",
				fmt.Errorf("file exceeds the maximum of %d data rows", maxRows))
		}
	}

	if len(parsed.Records) == 0 {
		return nil, newStructuralError("parse", fmt.Errorf("no data rows found"))
	}

	return parsed, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
