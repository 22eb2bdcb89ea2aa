package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPrice is returned when a price doesn't satisfy Begin < End.
var ErrInvalidPrice = errors.New("invalid price")

// GroupKey identifies the prices that may conflict with each other.
//
// Prices with different keys never interact during a merge.
type GroupKey struct {
	ProductCode string
	LineNumber  int
	Department  int
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%d/%d", k.ProductCode, k.LineNumber, k.Department)
}

// Price is a price value in force during [Begin, End) for a product line in a department.
//
// ID is an opaque identity assigned by whoever stores the prices. Zero means unset.
type Price struct {
	ID          int64     `yaml:"id,omitempty"`
	ProductCode string    `yaml:"product_code"`
	LineNumber  int       `yaml:"number"`
	Department  int       `yaml:"depart"`
	Begin       time.Time `yaml:"begin"`
	End         time.Time `yaml:"end"`
	Value       int64     `yaml:"value"`
}

func NewPrice(productCode string, lineNumber, department int, value int64, begin, end time.Time) Price {
	return Price{
		ProductCode: productCode,
		LineNumber:  lineNumber,
		Department:  department,
		Begin:       begin,
		End:         end,
		Value:       value,
	}
}

func (p *Price) Key() GroupKey {
	return GroupKey{
		ProductCode: p.ProductCode,
		LineNumber:  p.LineNumber,
		Department:  p.Department,
	}
}

func (p *Price) Period() Period {
	return NewPeriod(p.Begin, p.End)
}

// Validate checks that the price covers a non-empty time range.
func (p *Price) Validate() error {
	if !p.Begin.Before(p.End) {
		return fmt.Errorf("%w: %s: begin is not before end", ErrInvalidPrice, p)
	}
	return nil
}

func (p *Price) String() string {
	return fmt.Sprintf("product_code_%s{number: %d, depart: %d, time_range: %s .. %s, value: %d}",
		p.ProductCode, p.LineNumber, p.Department,
		p.Begin.Format(time.DateTime), p.End.Format(time.DateTime), p.Value)
}
