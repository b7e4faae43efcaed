package attendance

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

var csvHeaders = []string{"registration_id", "week", "is_present"}

type (
	// UploadResult summarises a CSV attendance upload.
	UploadResult struct {
		Message   string        `json:"message"`
		Processed int           `json:"processed"`
		Created   int           `json:"created"`
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
	week           int
	isPresent      bool
	reasonAbsent   null.String
}

// parseCSV reads the attendance upload format:
//
//	registration_id,week,is_present,reason_absent
//	1,1,true,
//	2,1,false,Sick
//
// A bad row is reported and skipped, never fatal. Row numbers start at 2,
// the header being row 1.
func parseCSV(r io.Reader) ([]csvRow, []string, error) {
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

		row := csvRow{num: num}
		if row.registrationID, err = strconv.Atoi(field(record, cols, "registration_id")); err != nil {
			invalid = append(invalid, fmt.Sprintf("Row %d: invalid registration_id value %q", num, field(record, cols, "registration_id")))
			continue
		}
		if row.week, err = strconv.Atoi(field(record, cols, "week")); err != nil {
			invalid = append(invalid, fmt.Sprintf("Row %d: invalid week value %q", num, field(record, cols, "week")))
			continue
		}
		present := strings.ToLower(field(record, cols, "is_present"))
		switch present {
		case "true", "1", "yes", "present":
			row.isPresent = true
		case "false", "0", "no", "absent":
			row.isPresent = false
		default:
			invalid = append(invalid, fmt.Sprintf("Row %d: invalid is_present value %q", num, present))
			continue
		}
		if reason := field(record, cols, "reason_absent"); reason != "" {
			row.reasonAbsent = null.StringFrom(reason)
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
