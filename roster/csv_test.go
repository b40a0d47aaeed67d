package roster_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/roster"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// NUMBER NORMALIZATION
// =============================================================================

func TestParseNumber_BothLocaleConventions(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234.567,89", "1234567.89"},
		{"1,234,567.89", "1234567.89"},
		{"R$ 5.000,00", "5000.00"},
		{"$1,000", "1000"},
		{"100", "100"},
		{"0,5", "0.5"},
	}

	for _, tc := range cases {
		got, err := roster.ParseNumber(tc.in)
		if err != nil {
			t.Errorf("ParseNumber(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(d(tc.want)) {
			t.Errorf("ParseNumber(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseNumber_Garbage(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "12x"} {
		if _, err := roster.ParseNumber(in); err == nil {
			t.Errorf("ParseNumber(%q): expected error", in)
		}
	}
}

// =============================================================================
// ROLE PARSING
// =============================================================================

func TestParseRole_EnglishAndPortuguese(t *testing.T) {
	cases := map[string]bonus.Role{
		"manager":   bonus.RoleManager,
		"GERENTE":   bonus.RoleManager,
		" Gerente ": bonus.RoleManager,
		"team":      bonus.RoleTeam,
		"Equipe":    bonus.RoleTeam,
	}
	for in, want := range cases {
		got, err := roster.ParseRole(in)
		if err != nil {
			t.Errorf("ParseRole(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseRole(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := roster.ParseRole("intern"); err == nil {
		t.Error("ParseRole(intern): expected error")
	}
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImportCSV_SemicolonBrazilianExport(t *testing.T) {
	// GIVEN: A semicolon-delimited export with comma decimals and a header
	// WHEN: Importing
	// THEN: Rows parse with normalized numbers and mapped roles

	input := strings.Join([]string{
		"Nome;Cargo;Salário;BSC;Gerencial;Operacional;Especial",
		"Maria Souza;gerente;8.500,00;102,5;98;110;130",
		"João Lima;equipe;3.200,50;95;;100;",
	}, "\n")

	rows, rowErrs, err := roster.ImportCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	maria := rows[0]
	if maria.Employee.Role != bonus.RoleManager {
		t.Errorf("expected manager role, got %v", maria.Employee.Role)
	}
	if !maria.Employee.BaseSalary.Equal(d("8500.00")) {
		t.Errorf("expected salary 8500.00, got %v", maria.Employee.BaseSalary)
	}
	if !maria.Performance[bonus.KPIBalancedScorecard].Equal(d("102.5")) {
		t.Errorf("expected achievement 102.5, got %v", maria.Performance[bonus.KPIBalancedScorecard])
	}

	joao := rows[1]
	if _, ok := joao.Performance[bonus.KPIManagerial]; ok {
		t.Error("blank achievement cell should stay unmeasured")
	}
	if _, ok := joao.Performance[bonus.KPISpecial]; ok {
		t.Error("trailing blank cell should stay unmeasured")
	}
}

func TestImportCSV_CommaDelimited(t *testing.T) {
	input := strings.Join([]string{
		"name,role,base_salary,balanced_scorecard,managerial,operational,special",
		"Alice,manager,9000.00,105,100,95,120",
		"Bob,team,4100.00,88,90,101,99",
	}, "\n")

	rows, rowErrs, err := roster.ImportCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[1].Performance[bonus.KPIOperational].Equal(d("101")) {
		t.Errorf("expected 101, got %v", rows[1].Performance[bonus.KPIOperational])
	}
}

func TestImportCSV_GerenteHeaderHeuristic(t *testing.T) {
	// GIVEN: A legacy export whose header row carries "gerente" in the
	//        name column
	// WHEN: Importing
	// THEN: That row is dropped as a header, real rows still load

	input := strings.Join([]string{
		"gerente;gerente;salario",
		"Carlos;gerente;7.000,00",
	}, "\n")

	rows, rowErrs, err := roster.ImportCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(rows) != 1 || rows[0].Employee.Name != "Carlos" {
		t.Fatalf("expected only Carlos, got %+v", rows)
	}
}

func TestImportCSV_BadRowsReportedNotFatal(t *testing.T) {
	input := strings.Join([]string{
		"name,role,base_salary",
		"Alice,manager,9000.00",
		"Bob,astronaut,4100.00",
		"Carol,team,not-a-number",
		"Dave,team,5000.00",
	}, "\n")

	rows, rowErrs, err := roster.ImportCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 good rows, got %d", len(rows))
	}
	if len(rowErrs) != 2 {
		t.Errorf("expected 2 row errors, got %d: %v", len(rowErrs), rowErrs)
	}
	for _, re := range rowErrs {
		if re.Line == 0 {
			t.Errorf("row error missing line number: %v", re)
		}
	}
}

func TestImportCSV_MidFileBadSalaryReported(t *testing.T) {
	// GIVEN: A data row after the header whose salary has a typo
	// WHEN: Importing
	// THEN: The row is reported as an error, never silently dropped

	input := strings.Join([]string{
		"name,role,base_salary",
		"Alice,manager,9000.00",
		"Joao Pereira,team,50o0",
	}, "\n")

	rows, rowErrs, err := roster.ImportCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 good row, got %d", len(rows))
	}
	if len(rowErrs) != 1 {
		t.Fatalf("expected 1 row error, got %d: %v", len(rowErrs), rowErrs)
	}
	if rowErrs[0].Line != 3 {
		t.Errorf("expected error on line 3, got %d", rowErrs[0].Line)
	}
	if !strings.Contains(rowErrs[0].Err.Error(), "base salary") {
		t.Errorf("expected base salary error, got %v", rowErrs[0].Err)
	}
}

func TestImportCSV_LineNumbersMatchSourceFile(t *testing.T) {
	// GIVEN: A quoted field spanning two physical lines before a bad row
	// WHEN: Importing
	// THEN: RowError.Line refers to the physical line in the source

	input := strings.Join([]string{
		"name,role,base_salary",
		`"Ana`,
		`Beatriz",team,1000.00`,
		"Bad Row,team,x9",
	}, "\n")

	rows, rowErrs, err := roster.ImportCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 good row, got %d", len(rows))
	}
	if len(rowErrs) != 1 {
		t.Fatalf("expected 1 row error, got %d: %v", len(rowErrs), rowErrs)
	}
	if rowErrs[0].Line != 4 {
		t.Errorf("expected error on physical line 4, got %d", rowErrs[0].Line)
	}
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportCSV_ColumnsAndFormatting(t *testing.T) {
	// GIVEN: A calculated report line
	// WHEN: Exporting
	// THEN: One column per KPI in enumeration order plus total, all
	//       values with exactly 2 decimals

	engine := bonus.DefaultEngine()
	emp := roster.Employee{
		Name:       "Maria",
		Role:       bonus.RoleTeam,
		BaseSalary: d("5000.00"),
	}
	perf := bonus.Performance{bonus.KPIBalancedScorecard: d("100")}

	results, err := engine.CalculateAll(emp.Role, emp.BaseSalary, perf)
	if err != nil {
		t.Fatalf("CalculateAll: %v", err)
	}

	var buf bytes.Buffer
	err = roster.ExportCSV(&buf, []roster.ReportLine{{
		Employee: emp,
		Results:  results,
		Total:    bonus.Total(results),
	}})
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}

	wantHeader := "name,role,base_salary,balanced_scorecard,managerial,operational,special,total"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}

	wantRow := "Maria,team,5000.00,400.00,0.00,0.00,0.00,400.00"
	if lines[1] != wantRow {
		t.Errorf("row = %q, want %q", lines[1], wantRow)
	}
}

func TestExportThenImport_RoundTripValues(t *testing.T) {
	// The export's identity columns must re-import cleanly.
	emp := roster.Employee{Name: "Bob", Role: bonus.RoleManager, BaseSalary: d("7250.10")}

	var buf bytes.Buffer
	if err := roster.ExportCSV(&buf, []roster.ReportLine{{Employee: emp}}); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	rows, rowErrs, err := roster.ImportCSV(&buf)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0].Employee.BaseSalary.Equal(d("7250.10")) {
		t.Errorf("salary round-trip: got %v", rows[0].Employee.BaseSalary)
	}
	if rows[0].Employee.Role != bonus.RoleManager {
		t.Errorf("role round-trip: got %v", rows[0].Employee.Role)
	}
}
