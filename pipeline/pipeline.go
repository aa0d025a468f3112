// Package pipeline validates extracted records and hands them to an output
// writer in batches.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-toscrape/models"
)

// ErrPipelineClosed is returned when Process is called after Close or after
// a write failure.
var ErrPipelineClosed = errors.New("pipeline: closed")

// OutputWriter defines the interface for data output.
type OutputWriter[T models.Row] interface {
	Write(records []T) error
	Close() error
	// Validate checks the persisted output. It is called after Close.
	Validate() error
}

// Options tunes a Pipeline.
type Options struct {
	BatchSize int
	// Dedupe drops records whose Key was already processed.
	Dedupe bool
}

// Stats is a snapshot of the pipeline counters.
type Stats struct {
	Processed        int
	Written          int
	ValidationErrors map[string]int
}

// Pipeline validates, optionally de-duplicates and batches records for a
// writer. It is used from a single goroutine.
type Pipeline[T models.Row] struct {
	writer OutputWriter[T]
	opts   Options

	batch []T
	seen  map[string]struct{}
	stats Stats

	closed       bool
	writerClosed bool
	err          error
}

// NewPipeline builds a pipeline writing to writer.
func NewPipeline[T models.Row](writer OutputWriter[T], opts Options) *Pipeline[T] {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	return &Pipeline[T]{
		writer: writer,
		opts:   opts,
		batch:  make([]T, 0, opts.BatchSize),
		seen:   make(map[string]struct{}),
		stats:  Stats{ValidationErrors: make(map[string]int)},
	}
}

// Process queues records, writing every full batch.
func (p *Pipeline[T]) Process(records []T) error {
	if p.closed {
		if p.err != nil {
			return p.err
		}
		return ErrPipelineClosed
	}

	for _, rec := range records {
		if !p.accept(rec) {
			continue
		}
		p.batch = append(p.batch, rec)
		if len(p.batch) >= p.opts.BatchSize {
			if err := p.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close writes the pending batch and closes the writer.
func (p *Pipeline[T]) Close() error {
	if p.writerClosed {
		return p.err
	}
	p.writerClosed = true
	if !p.closed {
		p.closed = true
		_ = p.flush()
	}

	if err := p.writer.Close(); err != nil && p.err == nil {
		p.err = fmt.Errorf("close writer: %w", err)
	}
	return p.err
}

// Err returns the first error encountered during processing.
func (p *Pipeline[T]) Err() error {
	return p.err
}

// Stats returns a copy of the counters.
func (p *Pipeline[T]) Stats() Stats {
	out := p.stats
	out.ValidationErrors = make(map[string]int, len(p.stats.ValidationErrors))
	for k, v := range p.stats.ValidationErrors {
		out.ValidationErrors[k] = v
	}
	return out
}

func (p *Pipeline[T]) accept(rec T) bool {
	if err := rec.Validate(); err != nil {
		p.stats.ValidationErrors["invalid_record"]++
		slog.Debug("dropping invalid record", slog.String("kind", rec.Kind()), slog.Any("error", err))
		return false
	}
	if p.opts.Dedupe {
		key := rec.Key()
		if _, ok := p.seen[key]; ok {
			p.stats.ValidationErrors["duplicate_key"]++
			return false
		}
		p.seen[key] = struct{}{}
	}
	p.stats.Processed++
	return true
}

func (p *Pipeline[T]) flush() error {
	if p.err != nil {
		return p.err
	}
	if len(p.batch) == 0 {
		return nil
	}
	if err := p.writer.Write(p.batch); err != nil {
		p.err = fmt.Errorf("write batch: %w", err)
		p.closed = true
		return p.err
	}
	p.stats.Written += len(p.batch)
	p.batch = p.batch[:0]
	return nil
}
