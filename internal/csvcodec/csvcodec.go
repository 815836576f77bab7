// Package csvcodec writes and reads the list exchange CSV format.
package csvcodec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vrsandeep/reel-go/internal/models"
)

// Columns of the exchange format, in order.
var Columns = []string{"tmdbId", "imdbId", "name", "year", "mediaType", "tmdbRating", "imdbRating", "tmdbVotes", "imdbVotes"}

// Header is the exact first line of every exported file.
var Header = strings.Join(Columns, ",")

// legacyColumns is the header of the previous export format.
var legacyColumns = []string{"tmdbId", "Name", "Year", "Letterboxd URI"}

var (
	ErrEmptyFile      = errors.New("CSV file is empty")
	ErrLegacyHeaders  = errors.New("CSV uses the legacy export format")
	ErrInvalidHeaders = errors.New("invalid CSV headers")
)

// escapeField quotes a field only when it contains a comma, a quote or a
// line break. Embedded quotes are doubled.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Encode renders records under the fixed header. Lines are joined with
// "\n" and there is no trailing newline. CRLF inside a field is written as
// "\n", the form every CSV reader hands back for a quoted line break.
func Encode(records []models.ExportRecord) []byte {
	var buf bytes.Buffer
	buf.WriteString(Header)
	for _, r := range records {
		buf.WriteByte('\n')
		for i, f := range r.Fields() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(escapeField(strings.ReplaceAll(f, "\r\n", "\n")))
		}
	}
	return buf.Bytes()
}

// Parse reads an uploaded file. The header must match the export format
// exactly; empty lines are skipped and short rows are padded with "". A line
// the reader cannot split is kept as a row with Malformed set.
func Parse(r io.Reader) ([]models.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return readRows(reader)
}

func readRows(reader *csv.Reader) ([]models.ImportRow, error) {
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeaders, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []models.ImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, err
			}
			rows = append(rows, models.ImportRow{Line: parseErr.StartLine, Malformed: true})
			continue
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, toRow(line, record))
	}
	return rows, nil
}

func checkHeader(header []string) error {
	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = strings.TrimSpace(h)
	}
	if len(fields) > 0 {
		fields[0] = strings.TrimPrefix(fields[0], "\ufeff")
	}

	if slices.Equal(fields, Columns) {
		return nil
	}
	if slices.Equal(fields, legacyColumns) || slices.Contains(fields, "Letterboxd URI") {
		return ErrLegacyHeaders
	}
	return ErrInvalidHeaders
}

// toRow maps fields by position. Identifier and number columns are trimmed;
// the name is kept verbatim.
func toRow(line int, record []string) models.ImportRow {
	raw := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}
	get := func(i int) string { return strings.TrimSpace(raw(i)) }
	return models.ImportRow{
		Line:       line,
		TmdbID:     get(0),
		ImdbID:     get(1),
		Name:       raw(2),
		Year:       get(3),
		MediaType:  get(4),
		TmdbRating: get(5),
		ImdbRating: get(6),
		TmdbVotes:  get(7),
		ImdbVotes:  get(8),
	}
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
