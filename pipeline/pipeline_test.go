package pipeline

import (
	"errors"
	"testing"

	"github.com/aluiziolira/go-toscrape/models"
)

type memoryWriter struct {
	batches [][]models.Quote
	failOn  int
	closed  bool
}

func (m *memoryWriter) Write(records []models.Quote) error {
	if m.failOn > 0 && len(m.batches)+1 == m.failOn {
		return errors.New("disk full")
	}
	batch := make([]models.Quote, len(records))
	copy(batch, records)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *memoryWriter) Close() error {
	m.closed = true
	return nil
}

func (m *memoryWriter) Validate() error { return nil }

func (m *memoryWriter) all() []string {
	var out []string
	for _, b := range m.batches {
		for _, q := range b {
			out = append(out, q.TextOrEmpty())
		}
	}
	return out
}

func TestPipelineBatchesInOrder(t *testing.T) {
	w := &memoryWriter{}
	p := NewPipeline[models.Quote](w, Options{BatchSize: 2})

	quotes := []models.Quote{
		models.NewQuote("a", "x"),
		models.NewQuote("b", "x"),
		models.NewQuote("c", "x"),
	}
	if err := p.Process(quotes); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(w.batches) != 1 {
		t.Fatalf("batches before close = %d, want 1", len(w.batches))
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := w.all()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("records = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("records = %v, want %v", got, want)
		}
	}
	if !w.closed {
		t.Fatal("writer not closed")
	}
	if stats := p.Stats(); stats.Processed != 3 || stats.Written != 3 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestPipelineValidationAndDedupe(t *testing.T) {
	tests := []struct {
		name       string
		dedupe     bool
		written    int
		duplicates int
	}{
		{name: "keep duplicates", dedupe: false, written: 3, duplicates: 0},
		{name: "drop duplicates", dedupe: true, written: 2, duplicates: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &memoryWriter{}
			p := NewPipeline[models.Quote](w, Options{Dedupe: tt.dedupe})

			quotes := []models.Quote{
				models.NewQuote("a", "x"),
				{Tags: []string{"orphan"}},
				models.NewQuote("a", "y"),
				models.NewQuote("b", "x"),
			}
			if err := p.Process(quotes); err != nil {
				t.Fatalf("process: %v", err)
			}
			if err := p.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			stats := p.Stats()
			if stats.Written != tt.written {
				t.Fatalf("written = %d, want %d", stats.Written, tt.written)
			}
			if stats.ValidationErrors["invalid_record"] != 1 {
				t.Fatalf("invalid = %d, want 1", stats.ValidationErrors["invalid_record"])
			}
			if stats.ValidationErrors["duplicate_key"] != tt.duplicates {
				t.Fatalf("duplicates = %d, want %d", stats.ValidationErrors["duplicate_key"], tt.duplicates)
			}
		})
	}
}

func TestPipelineWriteFailureCloses(t *testing.T) {
	w := &memoryWriter{failOn: 1}
	p := NewPipeline[models.Quote](w, Options{BatchSize: 1})

	if err := p.Process([]models.Quote{models.NewQuote("a", "x")}); err == nil {
		t.Fatal("expected write error")
	}
	if err := p.Process([]models.Quote{models.NewQuote("b", "x")}); err == nil {
		t.Fatal("expected error after failure")
	}
	if err := p.Close(); err == nil {
		t.Fatal("expected close to report the write error")
	}
	if !w.closed {
		t.Fatal("writer not closed after failure")
	}
}

func TestPipelineProcessAfterClose(t *testing.T) {
	p := NewPipeline[models.Quote](&memoryWriter{}, Options{})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Process([]models.Quote{models.NewQuote("a", "x")}); !errors.Is(err, ErrPipelineClosed) {
		t.Fatalf("error = %v, want ErrPipelineClosed", err)
	}
}
