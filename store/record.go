package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/liznear/price-merge/model"
	"github.com/liznear/price-merge/utils"
)

// ErrOutOfRange is returned when a price has a field that doesn't fit in a record.
var ErrOutOfRange = errors.New("record: value out of range")

// Times representable as int64 unix nanoseconds, roughly years 1678 to 2262.
var (
	minTime = time.Unix(0, math.MinInt64)
	maxTime = time.Unix(0, math.MaxInt64)
)

// fixedSize is the size of a record on disk, excluding the product code.
const fixedSize = 4 + 8 + 4 + 4 + 8 + 8 + 8

// sizeOnDisk returns the number of bytes p takes on disk.
func sizeOnDisk(p *model.Price) int {
	return fixedSize + len(p.ProductCode)
}

// writePrice writes p into w. It returns the number of written bytes.
//
// A price is written in this format. Integers are big endian.
// | product code length (4 bytes uint) | product code |
// | id                  (8 bytes int)  |
// | line number         (4 bytes int)  |
// | department          (4 bytes int)  |
// | begin               (8 bytes int, unix nanoseconds) |
// | end                 (8 bytes int, unix nanoseconds) |
// | value               (8 bytes int)  |
func writePrice(w io.Writer, p *model.Price) (int, error) {
	if err := checkRange(p); err != nil {
		return 0, err
	}
	n, err := utils.WriteWithUint32Length(w, []byte(p.ProductCode))
	if err != nil {
		return n, fmt.Errorf("record: fail to write product code: %w", err)
	}
	m, err := utils.WriteBigEndian(w,
		p.ID,
		int32(p.LineNumber),
		int32(p.Department),
		p.Begin.UnixNano(),
		p.End.UnixNano(),
		p.Value)
	n += m
	if err != nil {
		return n, fmt.Errorf("record: fail to write fields: %w", err)
	}
	return n, nil
}

// readPrice reads a price from r into p.
//
// If r has no data at all, io.EOF is returned as is. If the record is cut in the middle,
// the returned error wraps io.ErrUnexpectedEOF.
func readPrice(r io.Reader, p *model.Price) error {
	code, err := utils.ReadWithUint32Length(r)
	if err != nil {
		// If we get EOF while reading the product code, we directly propagate the EOF error.
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("record: fail to read product code: %w", err)
	}

	var (
		lineNumber int32
		department int32
		begin      int64
		end        int64
	)
	read := func(v any) error {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		return nil
	}
	if err := utils.Run(
		utils.ToRunnable1(read, any(&p.ID)),
		utils.ToRunnable1(read, any(&lineNumber)),
		utils.ToRunnable1(read, any(&department)),
		utils.ToRunnable1(read, any(&begin)),
		utils.ToRunnable1(read, any(&end)),
		utils.ToRunnable1(read, any(&p.Value)),
	); err != nil {
		return fmt.Errorf("record: fail to read fields: %w", err)
	}

	p.ProductCode = string(code)
	p.LineNumber = int(lineNumber)
	p.Department = int(department)
	p.Begin = time.Unix(0, begin).UTC()
	p.End = time.Unix(0, end).UTC()
	return nil
}

// checkRange fails if p can't be written without losing information.
func checkRange(p *model.Price) error {
	if p.LineNumber < math.MinInt32 || p.LineNumber > math.MaxInt32 {
		return fmt.Errorf("%w: line number %d of %s", ErrOutOfRange, p.LineNumber, p)
	}
	if p.Department < math.MinInt32 || p.Department > math.MaxInt32 {
		return fmt.Errorf("%w: department %d of %s", ErrOutOfRange, p.Department, p)
	}
	for _, t := range []time.Time{p.Begin, p.End} {
		if t.Before(minTime) || t.After(maxTime) {
			return fmt.Errorf("%w: time %s of %s", ErrOutOfRange, t.UTC().Format(time.RFC3339), p)
		}
	}
	return nil
}
