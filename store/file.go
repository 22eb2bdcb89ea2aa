// Package store reads and writes price records in an append-only binary file.
//
// A file is a sequence of records, see writePrice for the layout. Records are appended
// without any framing, so a crash while appending may leave an incomplete record at the
// end of the file. Recover drops it.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/liznear/price-merge/model"
)

// Extension is the file extension of price files.
const Extension = ".prices"

// Writer appends price records to a file.
type Writer struct {
	f *os.File
	w *bufio.Writer
}

// Create creates the price file at path, truncating it if it already exists.
func Create(path string) (*Writer, error) {
	return openWriter(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// Append opens the price file at path for appending, creating it if needed.
func Append(path string) (*Writer, error) {
	return openWriter(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

func openWriter(path string, flag int) (*Writer, error) {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("store writer: fail to open file: %w", err)
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

func (w *Writer) Write(p *model.Price) error {
	if _, err := writePrice(w.w, p); err != nil {
		return fmt.Errorf("store writer: fail to write price %s: %w", p, err)
	}
	return nil
}

// Sync flushes buffered records and commits the file to stable storage.
func (w *Writer) Sync() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("store writer: fail to flush: %w", err)
	}
	return w.f.Sync()
}

func (w *Writer) Close() error {
	return errors.Join(w.w.Flush(), w.f.Close())
}

// Reader reads price records from a file.
type Reader struct {
	f    *os.File
	r    *bufio.Reader
	size int64
	// n is the number of bytes of complete records read so far.
	n int64
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store reader: fail to open file: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("store reader: fail to stat file: %w", err)
	}
	return &Reader{f: f, r: bufio.NewReader(f), size: fi.Size()}, nil
}

// Next reports whether there are more data to read.
func (r *Reader) Next() bool {
	_, err := r.r.Peek(1)
	return err == nil
}

// Read reads the next record into p. If the record is incomplete, an *IncompleteError is returned.
func (r *Reader) Read(p *model.Price) error {
	if err := readPrice(r.r, p); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return &IncompleteError{Valid: r.n, Remaining: r.size - r.n}
		}
		return fmt.Errorf("store reader: fail to read price: %w", err)
	}
	r.n += int64(sizeOnDisk(p))
	return nil
}

func (r *Reader) Close() error {
	return r.f.Close()
}

// IncompleteError is returned when the last record of a file is cut in the middle.
type IncompleteError struct {
	// Valid is the number of bytes of complete records before the incomplete one.
	Valid int64
	// Remaining is the number of bytes after the complete records.
	Remaining int64
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("store: remaining %d bytes after offset %d are incomplete", e.Remaining, e.Valid)
}

// Load reads all records of the price file at path.
//
// If the file ends with an incomplete record, the complete records are returned along
// with an *IncompleteError.
func Load(path string) ([]model.Price, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var ret []model.Price
	for r.Next() {
		var p model.Price
		if err := r.Read(&p); err != nil {
			return ret, err
		}
		ret = append(ret, p)
	}
	return ret, nil
}

// Recover reads all records of the price file at path. If the file ends with an incomplete
// record, the incomplete part is truncated so that the file can be appended again.
func Recover(path string) ([]model.Price, error) {
	ps, err := Load(path)
	if err == nil {
		return ps, nil
	}
	ierr := &IncompleteError{}
	if !errors.As(err, &ierr) {
		return nil, err
	}
	if err := os.Truncate(path, ierr.Valid); err != nil {
		return nil, fmt.Errorf("store: fail to truncate incomplete records: %w", err)
	}
	return ps, nil
}

// Save writes ps to the price file at path, replacing its content.
func Save(path string, ps []model.Price) (err error) {
	w, err := Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()

	for i := range ps {
		if err := w.Write(&ps[i]); err != nil {
			return err
		}
	}
	return w.Sync()
}
