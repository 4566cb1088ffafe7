// Package csvio reads and writes the group membership CSV exchanged with staff.
//
// Export columns are group_name, group_number, username and tutorial. Import
// reads group_name, username and tutorial by header name; other columns are
// ignored so an exported file can be edited and uploaded again.
package csvio

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gocarina/gocsv"

	"github.com/classgroups/classgroups/internal/fault"
)

// ExportRow is one line of an exported group set.
// Groups without members export a single row with an empty username.
type ExportRow struct {
	GroupName   string `csv:"group_name"`
	GroupNumber int    `csv:"group_number"`
	Username    string `csv:"username"`
	Tutorial    string `csv:"tutorial"`
}

// ImportRow is one line of an uploaded group set.
type ImportRow struct {
	// Line is the line number in the file, the header being line 1.
	Line      int    `csv:"-"`
	GroupName string `csv:"group_name"`
	Username  string `csv:"username"`
	Tutorial  string `csv:"tutorial"`
}

var requiredColumns = []string{"group_name", "username"}

// allowedTypes are accepted upload types; detection walks up the mimetype tree.
var allowedTypes = []string{"text/csv", "text/plain"}

// CheckContentType rejects uploads that are not plain text CSV.
func CheckContentType(data []byte) error {
	detected := mimetype.Detect(data)

	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range allowedTypes {
			if m.Is(allowed) {
				return nil
			}
		}
	}

	return fault.Invalid("Unsupported file type %s, expected a CSV file", detected.String())
}

// Encode renders rows as CSV with a header line.
func Encode(rows []ExportRow) ([]byte, error) {
	if len(rows) == 0 {
		return []byte(strings.Join([]string{"group_name", "group_number", "username", "tutorial"}, ",") + "\n"), nil
	}

	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fault.Validation(err)
	}

	return out, nil
}

// Decode checks the content type and header, then parses every row.
// Cell values are trimmed; fully blank rows are dropped.
func Decode(data []byte) ([]ImportRow, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fault.Invalid("CSV file is empty")
	}

	if err := CheckContentType(data); err != nil {
		return nil, err
	}

	if err := checkHeader(data); err != nil {
		return nil, err
	}

	var parsed []ImportRow
	if err := gocsv.UnmarshalBytes(data, &parsed); err != nil {
		return nil, fault.Validation(err)
	}

	rows := make([]ImportRow, 0, len(parsed))

	for i, r := range parsed {
		r.Line = i + 2 //nolint:mnd // header is line 1
		r.GroupName = strings.TrimSpace(r.GroupName)
		r.Username = strings.TrimSpace(r.Username)
		r.Tutorial = strings.TrimSpace(r.Tutorial)

		if r.GroupName == "" && r.Username == "" && r.Tutorial == "" {
			continue
		}

		rows = append(rows, r)
	}

	return rows, nil
}

func checkHeader(data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return fault.Invalid("Unable to read CSV header: %s", err.Error())
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string

	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return fault.Invalid("CSV header is missing column(s): %s", strings.Join(missing, ", "))
	}

	return nil
}
