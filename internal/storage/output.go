package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Output writes one JSON value per line to a file it truncates on open.
type Output struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

func CreateOutput(path string) (*Output, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	buf := bufio.NewWriter(file)
	return &Output{file: file, buf: buf, enc: json.NewEncoder(buf)}, nil
}

func (o *Output) Write(value interface{}) error {
	if err := o.enc.Encode(value); err != nil {
		return fmt.Errorf("encode line: %w", err)
	}
	return nil
}

// Close flushes buffered lines and closes the file.
func (o *Output) Close() error {
	if o == nil {
		return nil
	}
	flushErr := o.buf.Flush()
	closeErr := o.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", o.file.Name(), flushErr)
	}
	return closeErr
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}
