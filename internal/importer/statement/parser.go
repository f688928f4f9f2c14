// Package statement reads bank CSV exports into neutral statement lines.
package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/closer/internal/encoding"
)

var ErrUnknownFormat = errors.New("no matching statement format found")

// Line is one movement of a bank statement. Amount is in cents and always
// positive; Debit tells money leaving the account from money entering it.
type Line struct {
	Date        time.Time
	Description string
	Amount      int64
	Debit       bool
}

// Parser reads bank CSV exports and auto-detects which known format is used
// by matching column headers against the profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]Line, error) {
	utf8r, charset, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}

	slog.Debug("decoded statement", "charset", charset)

	content, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	for _, comma := range []rune{';', ','} {
		rows, err := readRows(content, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows, comma)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
	}

	return nil, ErrUnknownFormat
}

func readRows(content []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile using comma.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string, comma rune) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].Comma == comma && matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts statement lines using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]Line, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var lines []Line

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(row, dateIdx, p.DateLayout)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, debit, ok := parseRowAmount(p, cols, row)
		if !ok {
			continue
		}

		lines = append(lines, Line{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Debit:       debit,
		})
	}

	return lines, nil
}

// parseDate returns false for empty cells or unparseable values (footer rows, etc).
func parseDate(row []string, idx int, layout string) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func parseRowAmount(p *Profile, cols colIndex, row []string) (int64, bool, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(row, cols[p.AmountCol], p.Number)
	case amountSplit:
		return parseSplitAmount(row, cols[p.DebitCol], cols[p.CreditCol], p.Number)
	}

	return 0, false, false
}

// parseSingleAmount handles a single signed amount column. Negative amounts are debits.
func parseSingleAmount(row []string, idx int, format numberFormat) (int64, bool, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return 0, false, false
	}

	cents, err := parseAmount(s, format)
	if err != nil || cents == 0 {
		return 0, false, false
	}

	if cents < 0 {
		return -cents, true, true
	}

	return cents, false, true
}

// parseSplitAmount handles separate debit/credit columns.
func parseSplitAmount(row []string, debitIdx, creditIdx int, format numberFormat) (int64, bool, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		cents, err := parseAmount(s, format)
		if err == nil && cents != 0 {
			return abs(cents), true, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		cents, err := parseAmount(s, format)
		if err == nil && cents != 0 {
			return abs(cents), false, true
		}
	}

	return 0, false, false
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
