package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aluiziolira/go-toscrape/models"
)

// NewWriter creates the writer for format at path. The dual format writes
// CSV to path and JSONL next to it.
func NewWriter[T models.Row](format, path string) (OutputWriter[T], error) {
	var (
		w   OutputWriter[T]
		err error
	)
	switch strings.ToLower(format) {
	case "json":
		w, err = NewJSONWriter[T](path)
	case "jsonl":
		w, err = NewJSONLWriter[T](path)
	case "csv":
		w, err = NewCSVWriter[T](path)
	case "sqlite":
		w, err = NewSQLiteWriter[T](path)
	case "dual":
		base := strings.TrimSuffix(path, filepath.Ext(path))
		w, err = NewDualWriter[T](base+".csv", base+".jsonl")
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// JSONWriter writes records as one indented JSON array. The closing bracket
// is written by Close.
type JSONWriter[T models.Row] struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	count  int
}

// NewJSONWriter creates the file, and its directory when missing.
func NewJSONWriter[T models.Row](path string) (*JSONWriter[T], error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	return &JSONWriter[T]{
		path:   path,
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Write appends records to the array.
func (jw *JSONWriter[T]) Write(records []T) error {
	for _, rec := range records {
		encoded, err := encodeIndented(rec)
		if err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}

		sep := ",\n    "
		if jw.count == 0 {
			sep = "[\n    "
		}
		if _, err := jw.writer.WriteString(sep); err != nil {
			return fmt.Errorf("write json record: %w", err)
		}
		if _, err := jw.writer.Write(encoded); err != nil {
			return fmt.Errorf("write json record: %w", err)
		}
		jw.count++
	}
	return nil
}

// Close terminates the array and closes the file.
func (jw *JSONWriter[T]) Close() error {
	closing := "\n]\n"
	if jw.count == 0 {
		closing = "[]\n"
	}
	if _, err := jw.writer.WriteString(closing); err != nil {
		jw.file.Close()
		return fmt.Errorf("write json trailer: %w", err)
	}
	if err := jw.writer.Flush(); err != nil {
		jw.file.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has content.
func (jw *JSONWriter[T]) Validate() error {
	return nonEmpty(jw.path, "json")
}

// encodeIndented renders v with four-space indentation, nested one level
// deep, leaving non-ASCII and HTML characters as they are.
func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("    ", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// JSONLWriter writes newline-delimited JSON records.
type JSONLWriter[T models.Row] struct {
	path    string
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
}

// NewJSONLWriter initialises the JSONL writer.
func NewJSONLWriter[T models.Row](path string) (*JSONLWriter[T], error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create jsonl file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	return &JSONLWriter[T]{
		path:    path,
		file:    f,
		writer:  buffer,
		encoder: encoder,
	}, nil
}

// Write appends records, one per line.
func (jw *JSONLWriter[T]) Write(records []T) error {
	for _, rec := range records {
		if err := jw.encoder.Encode(rec); err != nil {
			return fmt.Errorf("encode jsonl record: %w", err)
		}
	}
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush jsonl writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONLWriter[T]) Close() error {
	if err := jw.writer.Flush(); err != nil {
		jw.file.Close()
		return fmt.Errorf("flush jsonl writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSONL file has data.
func (jw *JSONLWriter[T]) Validate() error {
	return nonEmpty(jw.path, "jsonl")
}

// CSVWriter writes records to CSV with the header of T.
type CSVWriter[T models.Row] struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter[T models.Row](path string) (*CSVWriter[T], error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	var zero T
	writer := csv.NewWriter(f)
	if err := writer.Write(zero.CSVHeader()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter[T]{path: path, file: f, writer: writer}, nil
}

// Write appends records to the CSV output.
func (cw *CSVWriter[T]) Write(records []T) error {
	for _, rec := range records {
		if err := cw.writer.Write(rec.CSVRecord()); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter[T]) Close() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file exists and is not empty.
func (cw *CSVWriter[T]) Validate() error {
	return nonEmpty(cw.path, "csv")
}

func nonEmpty(path, kind string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s file: %w", kind, err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("%s file is empty", kind)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
