package prices

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/liznear/price-merge/model"
)

// ErrInvariant is raised when the ordering is asked to compare values it doesn't know about.
// It always indicates a bug in this package.
var ErrInvariant = errors.New("prices: invariant violation")

type boundKind byte

const (
	// kindPrice is a real price stored in a group.
	kindPrice boundKind = iota + 1
	// kindBegin sorts exactly where a price beginning at its time would sort.
	kindBegin
	// kindEnd sorts exactly where a price ending at its time would sort.
	kindEnd
)

func (k boundKind) String() string {
	switch k {
	case kindPrice:
		return "price"
	case kindBegin:
		return "begin"
	case kindEnd:
		return "end"
	}
	return fmt.Sprintf("boundKind(%d)", byte(k))
}

// bound is the key of the ordered set of a group.
//
// Only kindPrice bounds are stored. kindBegin and kindEnd bounds are built on the fly to
// probe the set, e.g. "all prices between end(t1) and begin(t2)" are the prices
// overlapping (t1, t2).
type bound struct {
	kind  boundKind
	at    time.Time
	price *model.Price
	// seq tells apart prices with the same period.
	seq uint64
}

func priceBound(p *model.Price, seq uint64) bound {
	return bound{kind: kindPrice, price: p, seq: seq}
}

func beginBound(t time.Time) bound {
	return bound{kind: kindBegin, at: t}
}

func endBound(t time.Time) bound {
	return bound{kind: kindEnd, at: t}
}

// compareBounds is the comparator of the ordered set of a group.
//
//   - price vs price: by begin, then end, then seq.
//   - begin(t) vs price or begin: t vs the other's begin.
//   - end(t) vs price or end: t vs the other's end.
//   - begin(t1) vs end(t2): t1 vs t2.
//
// A price compared to a sentinel uses the same rules mirrored.
func compareBounds(a, b bound) int {
	switch a.kind {
	case kindPrice:
		switch b.kind {
		case kindPrice:
			if c := a.price.Begin.Compare(b.price.Begin); c != 0 {
				return c
			}
			if c := a.price.End.Compare(b.price.End); c != 0 {
				return c
			}
			return cmp.Compare(a.seq, b.seq)
		case kindBegin:
			return a.price.Begin.Compare(b.at)
		case kindEnd:
			return a.price.End.Compare(b.at)
		}
	case kindBegin:
		switch b.kind {
		case kindPrice, kindBegin:
			return a.at.Compare(b.begin())
		case kindEnd:
			return a.at.Compare(b.at)
		}
	case kindEnd:
		switch b.kind {
		case kindPrice, kindEnd:
			return a.at.Compare(b.end())
		case kindBegin:
			return a.at.Compare(b.at)
		}
	default:
		panic(fmt.Errorf("%w: unexpected bound kind %s", ErrInvariant, a.kind))
	}
	panic(fmt.Errorf("%w: unexpected bound kind %s", ErrInvariant, b.kind))
}

func (b bound) begin() time.Time {
	if b.kind == kindPrice {
		return b.price.Begin
	}
	return b.at
}

func (b bound) end() time.Time {
	if b.kind == kindPrice {
		return b.price.End
	}
	return b.at
}
