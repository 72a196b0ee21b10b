package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/psorokin/canonica/internal/model"
)

// stubRunner labels each case by id; Delay simulates slow verifications so
// completion order differs from input order.
type stubRunner struct {
	delay func(rec model.CaseRecord) time.Duration
}

func (r *stubRunner) RunCase(ctx context.Context, rec model.CaseRecord) model.CaseOutput {
	if r.delay != nil {
		time.Sleep(r.delay(rec))
	}
	return model.CaseOutput{
		ID:         rec.ID,
		Prediction: model.Consistent,
		Rationale:  "checked " + rec.ID,
		Book:       rec.BookName,
		Character:  rec.Character,
	}
}

func makeCases(n int) []model.CaseRecord {
	cases := make([]model.CaseRecord, n)
	for i := range cases {
		cases[i] = model.CaseRecord{
			ID:        fmt.Sprintf("case-%d", i),
			BookName:  "Book",
			Character: "Hero",
			Backstory: "a past",
		}
	}
	return cases
}

func TestProcessPreservesInputOrder(t *testing.T) {
	// Earlier cases sleep longer, so they finish last.
	runner := &stubRunner{delay: func(rec model.CaseRecord) time.Duration {
		var i int
		fmt.Sscanf(rec.ID, "case-%d", &i)
		return time.Duration(10-i) * time.Millisecond
	}}
	b := NewBatchProcessor(runner, 4, 0, false)

	cases := makeCases(10)
	outputs := b.Process(context.Background(), cases)
	if len(outputs) != len(cases) {
		t.Fatalf("got %d outputs, want %d", len(outputs), len(cases))
	}
	for i, out := range outputs {
		if out.ID != cases[i].ID {
			t.Errorf("outputs[%d].ID = %q, want %q", i, out.ID, cases[i].ID)
		}
	}
}

func TestProcessEmptyInput(t *testing.T) {
	b := NewBatchProcessor(&stubRunner{}, 2, 0, false)
	outputs := b.Process(context.Background(), nil)
	if len(outputs) != 0 {
		t.Errorf("got %d outputs, want 0", len(outputs))
	}
}

func TestProcessSpacesSubmissions(t *testing.T) {
	b := NewBatchProcessor(&stubRunner{}, 1, 20*time.Millisecond, false)

	start := time.Now()
	outputs := b.Process(context.Background(), makeCases(3))
	elapsed := time.Since(start)

	if len(outputs) != 3 {
		t.Fatalf("got %d outputs", len(outputs))
	}
	// Two inter-case delays of 20ms each.
	if elapsed < 40*time.Millisecond {
		t.Errorf("batch finished in %v, expected at least 40ms of pacing", elapsed)
	}
}

func TestProcessProducesOutputForEveryCase(t *testing.T) {
	b := NewBatchProcessor(&stubRunner{}, 3, 0, false)
	outputs := b.Process(context.Background(), makeCases(25))
	for i, out := range outputs {
		if out.ID == "" {
			t.Errorf("outputs[%d] is zero valued", i)
		}
	}
}
