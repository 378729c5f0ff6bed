package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyFile indicates the upload has no header row to map columns from.
var ErrEmptyFile = errors.New("file has no header row")

// ReadCSV parses a CSV stream into ordered rows. The first record is the
// header; ragged data rows are tolerated and padded with empty cells.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, buildRow(header, record))
	}

	return rows, nil
}

// ReadXLSX parses the first sheet of an Excel workbook into ordered rows,
// using the first sheet row as the header.
func ReadXLSX(r io.Reader) ([]Row, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := records[0]
	var rows []Row
	for _, record := range records[1:] {
		rows = append(rows, buildRow(header, record))
	}

	return rows, nil
}

func buildRow(header, record []string) Row {
	row := Row{Values: make(map[string]string, len(header))}
	for i, key := range header {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, dup := row.Values[key]; dup {
			// First column under a repeated header wins.
			continue
		}
		var value string
		if i < len(record) {
			value = record[i]
		}
		row.Keys = append(row.Keys, key)
		row.Values[key] = value
	}
	return row
}
