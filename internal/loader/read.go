package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/htmlindex"
)

// table is a parsed input file: the header row plus data rows.
type table struct {
	header []string
	rows   [][]string
}

// readTable picks a parser by file extension.
func readTable(ctx context.Context, path string, opts Options) (*table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path, opts.Sheet)
	default:
		return readCSV(ctx, path, opts)
	}
}

func readCSV(ctx context.Context, path string, opts Options) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r, err := decodeReader(f, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.ReuseRecord = false

	t := &table{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("csv: read cancelled: %w", err)
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if t.header == nil {
			t.header = record
			continue
		}
		if isBlank(record) {
			continue
		}
		t.rows = append(t.rows, record)
	}

	if t.header == nil {
		return nil, fmt.Errorf("%s has no header row", path)
	}
	return t, nil
}

// decodeReader wraps r with a decoder for the named charset. UTF-8 input is
// returned unchanged.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", encoding, err)
	}
	return enc.NewDecoder().Reader(r), nil
}

func readXLSX(path, sheetName string) (*table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var sheet *xlsx.Sheet
	if sheetName != "" {
		s, ok := f.Sheet[sheetName]
		if !ok {
			return nil, fmt.Errorf("xlsx: sheet %q not found in %s", sheetName, path)
		}
		sheet = s
	} else {
		if len(f.Sheets) == 0 {
			return nil, fmt.Errorf("xlsx: %s has no sheets", path)
		}
		sheet = f.Sheets[0]
	}

	t := &table{}
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if t.header == nil {
			t.header = cells
			continue
		}
		if isBlank(cells) {
			continue
		}
		t.rows = append(t.rows, cells)
	}

	if t.header == nil {
		return nil, fmt.Errorf("%s has no header row", path)
	}
	return t, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
