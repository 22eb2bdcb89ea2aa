package model

import (
	"fmt"
	"time"
)

// Period is a half-open time range [Begin, End).
type Period struct {
	Begin time.Time
	End   time.Time
}

func NewPeriod(begin, end time.Time) Period {
	return Period{begin, end}
}

// Fusion returns the smallest period covering all given periods. Gaps between
// them are covered as well.
func Fusion(periods []Period) *Period {
	if len(periods) == 0 {
		return nil
	}
	ret := &Period{
		Begin: periods[0].Begin,
		End:   periods[0].End,
	}
	for i := 1; i < len(periods); i++ {
		if periods[i].Begin.Before(ret.Begin) {
			ret.Begin = periods[i].Begin
		}
		if periods[i].End.After(ret.End) {
			ret.End = periods[i].End
		}
	}
	return ret
}

// HasOverlap reports whether two periods share an instant. Periods that only
// touch (one ends where the other begins) don't overlap.
func HasOverlap(p1, p2 Period) bool {
	return p1.Begin.Before(p2.End) && p2.Begin.Before(p1.End)
}

// Contains reports whether t is in [Begin, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Begin) && t.Before(p.End)
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.Begin.Format(time.DateTime), p.End.Format(time.DateTime))
}
