package dataset

import (
	"strings"
	"testing"

	"github.com/psorokin/canonica/internal/model"
)

const sampleCSV = `id,book_name,char,content,label
1,The Count of Monte Cristo,Edmond,"Born in Marseille, he became a sailor.",consistent
2,In Search of the Castaways,Mary,"She never left her village.",contradict
3,The Count of Monte Cristo,Mercedes,"A fisherman's daughter.",
`

func TestReadCases(t *testing.T) {
	cases, err := ReadCases(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCases() error: %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("got %d cases, want 3", len(cases))
	}

	first := cases[0]
	if first.ID != "1" || first.BookName != "The Count of Monte Cristo" || first.Character != "Edmond" {
		t.Errorf("first case = %+v", first)
	}
	if first.Backstory != "Born in Marseille, he became a sailor." {
		t.Errorf("Backstory = %q", first.Backstory)
	}
	if first.Label != "consistent" {
		t.Errorf("Label = %q", first.Label)
	}
	if cases[2].Label != "" {
		t.Errorf("unlabeled case Label = %q, want empty", cases[2].Label)
	}
}

func TestReadCasesWithoutLabelColumn(t *testing.T) {
	csv := "id,book_name,char,content\n7,Book,Hero,A quiet past.\n"
	cases, err := ReadCases(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCases() error: %v", err)
	}
	if len(cases) != 1 || cases[0].Label != "" {
		t.Errorf("cases = %+v", cases)
	}
}

func TestReadCasesReorderedColumns(t *testing.T) {
	csv := "char,id,content,book_name\nHero,9,Some past.,Book\n"
	cases, err := ReadCases(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCases() error: %v", err)
	}
	c := cases[0]
	if c.ID != "9" || c.Character != "Hero" || c.BookName != "Book" || c.Backstory != "Some past." {
		t.Errorf("case = %+v", c)
	}
}

func TestReadCasesMissingColumn(t *testing.T) {
	csv := "id,book_name,content\n1,Book,text\n"
	if _, err := ReadCases(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for missing char column")
	}
}

func TestReadCasesEmptyID(t *testing.T) {
	csv := "id,book_name,char,content\n,Book,Hero,text\n"
	if _, err := ReadCases(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestWriteSubmission(t *testing.T) {
	outputs := []model.CaseOutput{
		{ID: "1", Prediction: model.Consistent, Rationale: "Backstory aligns, evidence: \"he sailed\"", Book: "Book A", Character: "Edmond"},
		{ID: "2", Prediction: model.Contradict, Rationale: "conflicts", Book: "Book B", Character: "Mary"},
	}

	var sb strings.Builder
	if err := WriteSubmission(&sb, outputs); err != nil {
		t.Fatalf("WriteSubmission() error: %v", err)
	}

	got := sb.String()
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), got)
	}
	if lines[0] != "id,prediction,rationale,book,character" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,consistent,") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2,contradict,") {
		t.Errorf("row 2 = %q", lines[2])
	}

	// Round trip: quoted rationale survives.
	reread, err := ReadCases(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCases() error: %v", err)
	}
	if len(reread) != 3 {
		t.Errorf("round trip read %d cases", len(reread))
	}
}

func TestExplore(t *testing.T) {
	cases := []model.CaseRecord{
		{ID: "1", BookName: "A", Backstory: "one two three", Label: "consistent"},
		{ID: "2", BookName: "A", Backstory: "one two three four five", Label: "contradict"},
		{ID: "3", BookName: "B", Backstory: "one", Label: "consistent"},
		{ID: "4", BookName: "B", Backstory: "one two"},
	}

	stats := Explore(cases)
	if stats.Total != 4 || stats.Labeled != 3 {
		t.Errorf("Total/Labeled = %d/%d", stats.Total, stats.Labeled)
	}
	if stats.LabelCounts["consistent"] != 2 || stats.LabelCounts["contradict"] != 1 {
		t.Errorf("LabelCounts = %v", stats.LabelCounts)
	}
	if stats.BookCounts["A"] != 2 || stats.BookCounts["B"] != 2 {
		t.Errorf("BookCounts = %v", stats.BookCounts)
	}
	if stats.MinWords != 1 || stats.MaxWords != 5 {
		t.Errorf("word range = %d..%d", stats.MinWords, stats.MaxWords)
	}
	if stats.MeanWords != 2.75 {
		t.Errorf("MeanWords = %v", stats.MeanWords)
	}

	var sb strings.Builder
	stats.Report(&sb)
	report := sb.String()
	for _, want := range []string{"Cases: 4 (3 labeled)", "consistent", "Backstory length"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestExploreEmpty(t *testing.T) {
	stats := Explore(nil)
	if stats.Total != 0 || stats.MeanWords != 0 {
		t.Errorf("stats = %+v", stats)
	}
}
