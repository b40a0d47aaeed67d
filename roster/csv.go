/*
csv.go - Delimited text import and export for roster data

PURPOSE:
  Imports employee rows (with optional per-KPI achievements) from CSV
  and exports calculated bonus reports. All parsing quirks live here:
  the engine receives normalized decimals and valid role tags only.

IMPORT FORMAT:
  name, role, base_salary[, balanced_scorecard, managerial, operational, special]

  - Comma or semicolon delimited (detected from the first line;
    Brazilian spreadsheet exports use ';')
  - Numbers accept both locale conventions: "1.234,56" and "1,234.56"
  - Role names match case-insensitively, English or Portuguese
  - Header rows are detected and skipped; legacy exports also repeat
    the word "gerente" in the name column of the header row, so rows
    named exactly that are dropped as well
  - Achievement columns are optional; a missing or blank cell means
    "not yet measured"

EXPORT FORMAT:
  One column per KPI type in enumeration order plus a trailing total.
  Numeric values carry exactly 2 decimal digits with '.' as the
  decimal separator; formatting never feeds back into computation.

ERROR POLICY:
  Bad rows don't abort the import. Each failure is reported as a
  RowError with its line number, in the style of a spreadsheet
  validation report, and the remaining rows still load.

SEE ALSO:
  - types.go: Employee and role parsing
  - api/handlers.go: HTTP endpoints wrapping these functions
*/
package roster

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/bonus-engine/bonus"
)

// =============================================================================
// IMPORT
// =============================================================================

// ImportRow is one successfully parsed roster row.
type ImportRow struct {
	Employee    Employee
	Performance bonus.Performance
}

// RowError reports a row that failed to parse. Line is 1-based as in
// the source file.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// importColumns is the fixed column layout after the three identity
// columns: one achievement column per KPI type, in enumeration order.
var importColumns = bonus.AllKPITypes()

// ImportCSV reads roster rows from delimited text. Malformed rows are
// collected as RowErrors; only an unreadable stream returns a non-nil
// error.
func ImportCSV(r io.Reader) ([]ImportRow, []RowError, error) {
	buffered := bufio.NewReader(r)
	delimiter, err := detectDelimiter(buffered)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(buffered)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // achievement columns are optional
	reader.TrimLeadingSpace = true

	var rows []ImportRow
	var rowErrs []RowError

	records := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		records++
		if err != nil {
			rowErrs = append(rowErrs, RowError{parseErrorLine(err), err})
			continue
		}
		// FieldPos gives the physical line of the record, which stays
		// accurate across quoted multi-line fields and blank lines.
		line, _ := reader.FieldPos(0)
		if isHeaderRow(record, records == 1) {
			continue
		}
		if len(record) < 3 {
			rowErrs = append(rowErrs, RowError{line, fmt.Errorf("expected at least 3 columns, got %d", len(record))})
			continue
		}

		name := strings.TrimSpace(record[0])
		role, err := ParseRole(record[1])
		if err != nil {
			rowErrs = append(rowErrs, RowError{line, err})
			continue
		}
		salary, err := ParseNumber(record[2])
		if err != nil {
			rowErrs = append(rowErrs, RowError{line, fmt.Errorf("base salary: %w", err)})
			continue
		}

		emp := Employee{Name: name, BaseSalary: salary, Role: role}
		if err := emp.Validate(); err != nil {
			rowErrs = append(rowErrs, RowError{line, err})
			continue
		}

		perf := bonus.Performance{}
		bad := false
		for i, kpi := range importColumns {
			col := 3 + i
			if col >= len(record) || strings.TrimSpace(record[col]) == "" {
				continue // not yet measured
			}
			achievement, err := ParseNumber(record[col])
			if err != nil {
				rowErrs = append(rowErrs, RowError{line, fmt.Errorf("%s: %w", kpi, err)})
				bad = true
				break
			}
			perf[kpi] = achievement
		}
		if bad {
			continue
		}

		rows = append(rows, ImportRow{Employee: emp, Performance: perf})
	}

	return rows, rowErrs, nil
}

// detectDelimiter peeks at the first line and picks ';' when it beats
// ',' - Brazilian spreadsheet exports are semicolon-delimited.
func detectDelimiter(r *bufio.Reader) (rune, error) {
	peek, err := r.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, fmt.Errorf("read csv payload: %w", err)
	}
	firstLine := string(peek)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';', nil
	}
	return ',', nil
}

// isHeaderRow detects column-title rows. Legacy exports repeat the
// role word "gerente" in the name column of the header, so that exact
// name is treated as a header marker too. The non-numeric-salary check
// applies only to the first record: later rows with a broken salary
// are data errors and must surface as RowErrors, not vanish as titles.
func isHeaderRow(record []string, first bool) bool {
	if len(record) == 0 {
		return true
	}
	name := strings.ToLower(strings.TrimSpace(record[0]))
	switch name {
	case "", "name", "nome", "employee", "funcionario", "funcionário", "gerente":
		return true
	}
	if first && len(record) >= 3 {
		// An untitled header row still has no numeric salary column.
		if _, err := ParseNumber(record[2]); err != nil {
			return true
		}
	}
	return false
}

// parseErrorLine recovers the physical line from a csv.ParseError.
func parseErrorLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

// =============================================================================
// NUMBER NORMALIZATION
// =============================================================================

// ParseNumber parses a numeric cell in either locale convention:
// "1.234,56", "1,234.56", "1234.56" and "1234,56" all yield the same
// decimal. Currency markers and whitespace are stripped.
func ParseNumber(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "R$")
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}

	lastComma := strings.LastIndexByte(cleaned, ',')
	lastDot := strings.LastIndexByte(cleaned, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the rightmost is the decimal separator, the
		// other is a thousands separator.
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			// Multiple commas can only be thousands separators.
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case lastDot >= 0 && strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	return d, nil
}

// =============================================================================
// EXPORT
// =============================================================================

// ReportLine pairs an employee with a finished calculation run.
type ReportLine struct {
	Employee Employee
	Results  []bonus.CalculationResult
	Total    decimal.Decimal
}

// ExportCSV writes the bonus report: identity columns, one bonus value
// column per KPI type in enumeration order, then the total. All
// monetary values are serialized with exactly 2 decimal digits.
func ExportCSV(w io.Writer, lines []ReportLine) error {
	writer := csv.NewWriter(w)

	header := []string{"name", "role", "base_salary"}
	for _, kpi := range bonus.AllKPITypes() {
		header = append(header, string(kpi))
	}
	header = append(header, "total")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, line := range lines {
		record := []string{
			line.Employee.Name,
			string(line.Employee.Role),
			line.Employee.BaseSalary.StringFixed(2),
		}
		for _, r := range line.Results {
			record = append(record, r.BonusValue.StringFixed(2))
		}
		record = append(record, line.Total.StringFixed(2))
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
