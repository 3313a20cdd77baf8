package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadSetCSV reads a set inventory from a CSV file with the columns
// part_number,color,quantity. A header row is detected and skipped.
func LoadSetCSV(path, name, setNumber string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open set file: %w", err)
	}
	defer f.Close()

	set, err := ReadSetCSV(f, name, setNumber)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return set, nil
}

// ReadSetCSV parses set inventory CSV data from a reader.
func ReadSetCSV(r io.Reader, name, setNumber string) (*Set, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var bricks []Brick
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++

		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: expected 3 columns, got %d", line, len(record))
		}

		// Skip a header row
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "part_number") {
			continue
		}

		qty, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid quantity %q", line, record[2])
		}

		brick, err := NewBrick(strings.TrimSpace(record[0]), strings.TrimSpace(record[1]), qty)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bricks = append(bricks, brick)
	}

	if len(bricks) == 0 {
		return nil, fmt.Errorf("set contains no bricks")
	}

	return NewSet(name, setNumber, bricks)
}
