// validator/validator.go
package validator

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tecenergy/tecingest/filestore"
	"github.com/tecenergy/tecingest/models"
)

// Report is the verdict for one snapshot file. NoData marks a structurally
// valid, header-only snapshot so downstream stages can skip it without
// treating it as an error.
type Report struct {
	File    string
	Valid   bool
	NoData  bool
	Reasons []string
}

// Validator classifies snapshot files against the expected schema. It never
// mutates a file; rejected snapshots stay on disk for inspection.
type Validator struct {
	store *filestore.Store
	log   *zap.Logger
}

func New(store *filestore.Store, log *zap.Logger) *Validator {
	return &Validator{store: store, log: log}
}

// Validate applies the schema and content checks to one snapshot. All
// failing checks are reported, not just the first.
//
// The raw cell-level reads use encoding/csv rather than the csvutil decoder
// the uploader uses: producing a per-column reason list needs access to every
// cell of every row, while a struct decode stops at the first bad value.
func (v *Validator) Validate(path string) Report {
	report := Report{File: path}

	f, err := v.store.Open(path)
	if err != nil {
		report.Reasons = append(report.Reasons, fmt.Sprintf("cannot open file: %v", err))
		return report
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // column-count mismatches are reported per row below
	rows, err := reader.ReadAll()
	if err != nil {
		report.Reasons = append(report.Reasons, "malformed CSV")
		return report
	}
	if len(rows) == 0 {
		report.Reasons = append(report.Reasons, "empty file, no header row")
		return report
	}

	headerOK := v.checkHeader(rows[0], &report)
	if headerOK {
		v.checkRows(path, rows[1:], &report)
	}

	report.Valid = len(report.Reasons) == 0
	if report.Valid && len(rows) == 1 {
		report.NoData = true
	}
	return report
}

// checkHeader verifies the 15 expected labels, case/whitespace-insensitive.
// Returns whether row-level checks can rely on the expected column layout.
func (v *Validator) checkHeader(header []string, report *Report) bool {
	got := make(map[string]bool, len(header))
	for _, label := range header {
		got[normalizeLabel(label)] = true
	}
	for _, want := range models.ExpectedHeader {
		if !got[normalizeLabel(want)] {
			report.Reasons = append(report.Reasons, fmt.Sprintf("missing expected column %q", want))
		}
	}

	expected := make(map[string]bool, len(models.ExpectedHeader))
	for _, want := range models.ExpectedHeader {
		expected[normalizeLabel(want)] = true
	}
	for _, label := range header {
		if !expected[normalizeLabel(label)] {
			report.Reasons = append(report.Reasons, fmt.Sprintf("unexpected column %q", label))
		}
	}
	if len(report.Reasons) > 0 {
		return false
	}

	// Same label set; duplicates or reordering still break positional reads.
	if len(header) != len(models.ExpectedHeader) {
		report.Reasons = append(report.Reasons,
			fmt.Sprintf("header has %d columns, expected %d", len(header), len(models.ExpectedHeader)))
		return false
	}
	for i, want := range models.ExpectedHeader {
		if normalizeLabel(header[i]) != normalizeLabel(want) {
			report.Reasons = append(report.Reasons, "header columns are out of order")
			return false
		}
	}
	return true
}

// checkRows applies the per-row checks: column count, integer capacity
// fields, flow indicator codes, and boolean-like flag labels. Row numbers in
// reasons are 1-based data rows.
func (v *Validator) checkRows(path string, rows [][]string, report *Report) {
	for n, row := range rows {
		rowNum := n + 1

		if len(row) != len(models.ExpectedHeader) {
			report.Reasons = append(report.Reasons,
				fmt.Sprintf("row %d: has %d columns, expected %d", rowNum, len(row), len(models.ExpectedHeader)))
			continue
		}

		for _, col := range models.NumericColumns {
			value := strings.TrimSpace(row[col.Index])
			if value == "" {
				continue
			}
			parsed, err := strconv.Atoi(value)
			if err != nil {
				report.Reasons = append(report.Reasons,
					fmt.Sprintf("row %d: column %q value %q is not an integer", rowNum, col.Name, row[col.Index]))
				continue
			}
			if parsed < 0 {
				// Negative capacity is suspicious but not grounds for rejection.
				v.log.Warn("negative value in capacity column",
					zap.String("file", path), zap.Int("row", rowNum), zap.String("column", col.Name), zap.Int("value", parsed))
			}
		}

		if !models.ValidFlow(row[models.ColumnFlowInd]) {
			report.Reasons = append(report.Reasons,
				fmt.Sprintf("row %d: column %q value %q is not a known flow code", rowNum, "Flow Ind", row[models.ColumnFlowInd]))
		}

		for _, col := range models.FlagColumns {
			if !models.ValidFlag(row[col.Index]) {
				report.Reasons = append(report.Reasons,
					fmt.Sprintf("row %d: column %q value %q is not a Y/N flag", rowNum, col.Name, row[col.Index]))
			}
		}

		if strings.TrimSpace(row[models.ColumnLoc]) == "" {
			v.log.Warn("row has empty location id",
				zap.String("file", path), zap.Int("row", rowNum))
		}
	}
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
