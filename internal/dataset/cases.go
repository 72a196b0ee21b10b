// Package dataset reads case CSVs and writes prediction submissions.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/psorokin/canonica/internal/model"
)

// Input column order. The label column is optional: test splits omit it.
var caseHeader = []string{"id", "book_name", "char", "content", "label"}

// Output column order for submissions.
var submissionHeader = []string{"id", "prediction", "rationale", "book", "character"}

// ReadCases parses a case CSV. The header row is required and matched by
// name, so column order beyond the canonical one still loads.
func ReadCases(r io.Reader) ([]model.CaseRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range caseHeader[:4] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q in header %v", required, header)
		}
	}
	labelCol, hasLabel := cols["label"]

	var cases []model.CaseRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		rec := model.CaseRecord{
			ID:        field(cols["id"]),
			BookName:  field(cols["book_name"]),
			Character: field(cols["char"]),
			Backstory: field(cols["content"]),
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("line %d: empty id", line)
		}
		if hasLabel {
			rec.Label = field(labelCol)
		}
		cases = append(cases, rec)
	}
	return cases, nil
}

// ReadCasesFile loads cases from a CSV on disk.
func ReadCasesFile(path string) ([]model.CaseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cases: %w", err)
	}
	defer f.Close()
	return ReadCases(f)
}

// WriteSubmission writes prediction rows in input order.
func WriteSubmission(w io.Writer, outputs []model.CaseOutput) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(submissionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, out := range outputs {
		row := []string{out.ID, string(out.Prediction), out.Rationale, out.Book, out.Character}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", out.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSubmissionFile writes the submission CSV to path.
func WriteSubmissionFile(path string, outputs []model.CaseOutput) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	if err := WriteSubmission(f, outputs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
