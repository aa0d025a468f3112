package pipeline

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/go-toscrape/models"
)

// DualWriter outputs to both CSV and JSONL simultaneously.
type DualWriter[T models.Row] struct {
	csvWriter   *CSVWriter[T]
	jsonlWriter *JSONLWriter[T]
}

// NewDualWriter creates a CSV writer and a JSONL writer.
func NewDualWriter[T models.Row](csvPath, jsonlPath string) (*DualWriter[T], error) {
	csvWriter, err := NewCSVWriter[T](csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV writer: %w", err)
	}

	jsonlWriter, err := NewJSONLWriter[T](jsonlPath)
	if err != nil {
		csvWriter.Close()
		return nil, fmt.Errorf("failed to create JSONL writer: %w", err)
	}

	return &DualWriter[T]{csvWriter: csvWriter, jsonlWriter: jsonlWriter}, nil
}

// Write writes records to both outputs.
func (dw *DualWriter[T]) Write(records []T) error {
	if err := dw.csvWriter.Write(records); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}
	if err := dw.jsonlWriter.Write(records); err != nil {
		return fmt.Errorf("JSONL write failed: %w", err)
	}
	return nil
}

// Close closes both writers.
func (dw *DualWriter[T]) Close() error {
	var errs []error
	if err := dw.csvWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("CSV close failed: %w", err))
	}
	if err := dw.jsonlWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("JSONL close failed: %w", err))
	}
	return errors.Join(errs...)
}

// Validate validates both output files.
func (dw *DualWriter[T]) Validate() error {
	var errs []error
	if err := dw.csvWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("CSV validation failed: %w", err))
	}
	if err := dw.jsonlWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("JSONL validation failed: %w", err))
	}
	return errors.Join(errs...)
}
