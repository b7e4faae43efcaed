package submission

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

var csvHeaders = []string{"registration_id", "assignment_id", "grade"}

type (
	// UploadResult summarises a CSV grades upload.
	UploadResult struct {
		Message   string        `json:"message"`
		Processed int           `json:"processed"`
		Updated   int           `json:"updated"`
		Skipped   int           `json:"skipped"`
		Details   UploadDetails `json:"details"`
	}

	UploadDetails struct {
		RegistrationsNotFound []string `json:"registrations_not_found"`
		TotalNotFound         int      `json:"total_not_found"`
		InvalidRows           []string `json:"invalid_rows"`
		TotalInvalid          int      `json:"total_invalid"`
	}
)

type csvRow struct {
	num            int
	registrationID int
	assignmentID   string
	grade          float64
}

// parseGradesCSV reads the grades upload format:
//
//	registration_id,assignment_id,grade
//	1,A001,85
//	2,A002,92
//
// A bad row is reported and skipped, never fatal. Row numbers start at 2,
// the header being row 1.
func parseGradesCSV(r io.Reader) ([]csvRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, core.CSVFormatError{RequiredHeaders: csvHeaders}
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range csvHeaders {
		if _, ok := cols[name]; !ok {
			return nil, nil, core.CSVFormatError{RequiredHeaders: csvHeaders, ReceivedHeaders: header}
		}
	}

	var (
		rows    []csvRow
		invalid []string
	)
	for num := 2; ; num++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			invalid = append(invalid, fmt.Sprintf("Row %d: %v", num, err))
			continue
		}

		row := csvRow{num: num, assignmentID: field(record, cols, "assignment_id")}
		if row.registrationID, err = strconv.Atoi(field(record, cols, "registration_id")); err != nil {
			invalid = append(invalid, fmt.Sprintf("Row %d: invalid registration_id value %q", num, field(record, cols, "registration_id")))
			continue
		}
		gradeStr := field(record, cols, "grade")
		if row.grade, err = strconv.ParseFloat(gradeStr, 64); err != nil {
			invalid = append(invalid, fmt.Sprintf("Row %d: invalid grade value %q", num, gradeStr))
			continue
		}
		if row.grade < 0 {
			invalid = append(invalid, fmt.Sprintf("Row %d: grade cannot be negative", num))
			continue
		}
		rows = append(rows, row)
	}
	return rows, invalid, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
