// Package prices merges new prices into existing ones.
//
// Prices are grouped by model.GroupKey. When a new price overlaps existing prices of its
// group:
//   - if the values are the same, the existing price is extended to cover the new one, and
//     the new price is dropped;
//   - if the values differ, the new price wins. Existing prices are truncated, split or
//     removed so that they don't overlap the new price anymore.
package prices

import (
	"errors"
	"fmt"
	"time"

	"github.com/liznear/price-merge/model"
	"go.uber.org/zap"
)

// Merge merges newPrices into oldPrices and returns the merged prices.
//
// Neither oldPrices nor newPrices is modified. Old prices in the result are copies, which
// may have been extended, truncated or split. The result has no particular order.
//
// Every price must satisfy Begin < End. Old prices may overlap each other; they are kept
// as they are unless a new price crosses them. If old prices of each group don't overlap,
// neither do the merged prices. Use CheckDisjoint to verify that.
func Merge(oldPrices, newPrices []model.Price, opts ...Option) (ret []model.Price, err error) {
	cfg := newConfig(opts)
	*cfg.Stats = Stats{}
	defer recoverInvariant(&err)

	if err := validate("old", oldPrices); err != nil {
		return nil, err
	}
	if err := validate("new", newPrices); err != nil {
		return nil, err
	}

	m := &merger{
		log:   cfg.Logger,
		stats: cfg.Stats,
	}
	m.group(oldPrices)

	var standalone []*model.Price
	for i := range newPrices {
		np := &newPrices[i]
		g, ok := m.groups[np.Key()]
		if !ok {
			m.stats.Passed++
			standalone = append(standalone, np)
			continue
		}
		if !m.mergePrice(g, np) {
			m.stats.Emitted++
			standalone = append(standalone, np)
		}
	}

	for _, g := range m.order {
		for _, p := range g.values() {
			ret = append(ret, *p)
		}
	}
	for _, p := range standalone {
		ret = append(ret, *p)
	}

	m.log.Debug("Merged prices",
		zap.Int("old", len(oldPrices)),
		zap.Int("new", len(newPrices)),
		zap.Int("merged", len(ret)),
		zap.Int("groups", len(m.order)))
	return ret, nil
}

type merger struct {
	log   *zap.Logger
	stats *Stats

	groups map[model.GroupKey]*group
	// order keeps groups in the order they are first seen, so that the result is stable.
	order []*group
}

// group copies the old prices into one ordered group per key.
func (m *merger) group(oldPrices []model.Price) {
	owned := make([]model.Price, len(oldPrices))
	copy(owned, oldPrices)

	m.groups = make(map[model.GroupKey]*group)
	for i := range owned {
		p := &owned[i]
		key := p.Key()
		g, ok := m.groups[key]
		if !ok {
			g = newGroup(key)
			m.groups[key] = g
			m.order = append(m.order, g)
		}
		g.add(p)
	}
}

// mergePrice resolves the overlaps between np and the prices of g. It returns true if np
// is absorbed by an old price of the same value.
//
// For each old price op crossed by np:
//
//	op begins  | op ends    | value | op                          | np
//	before np  | within np  | same  | end := np.end               | absorbed
//	before np  | within np  | diff  | end := np.begin             |
//	before np  | after np   | same  |                             | absorbed
//	before np  | after np   | diff  | end := np.begin, tail split |
//	within np  | within np  | same  | [np.begin, np.end)          | absorbed
//	within np  | within np  | diff  | removed                     |
//	within np  | after np   | same  | begin := np.begin           | absorbed
//	within np  | after np   | diff  | begin := np.end             |
//
// Once np is absorbed by some op, a later op with the same value is folded into it.
// Otherwise both would cover np's range.
func (m *merger) mergePrice(g *group, np *model.Price) bool {
	nb, ne := np.Begin, np.End
	var survivor *model.Price

	for _, op := range g.crossing(nb, ne) {
		same := op.Value == np.Value
		if survivor != nil && same {
			g.remove(op)
			end := model.Fusion([]model.Period{survivor.Period(), op.Period()}).End
			g.update(survivor, func(p *model.Price) { p.End = end })
			m.stats.Coalesced++
			m.log.Debug("Coalesce price", zap.Stringer("old", op), zap.Stringer("into", survivor))
			continue
		}

		ob, oe := op.Begin, op.End
		switch {
		case ob.Before(nb) && !oe.After(ne):
			if same {
				g.update(op, func(p *model.Price) { p.End = ne })
				survivor = op
				m.stats.Extended++
			} else {
				g.update(op, func(p *model.Price) { p.End = nb })
				m.stats.Truncated++
			}
		case ob.Before(nb):
			if same {
				survivor = op
			} else {
				g.update(op, func(p *model.Price) { p.End = nb })
				g.add(fragment(op, ne, oe))
				m.stats.Split++
			}
		case !oe.After(ne):
			if same {
				g.update(op, func(p *model.Price) {
					p.Begin = nb
					p.End = ne
				})
				survivor = op
				m.stats.Extended++
			} else {
				g.remove(op)
				m.stats.Removed++
			}
		default:
			if same {
				g.update(op, func(p *model.Price) { p.Begin = nb })
				survivor = op
				m.stats.Extended++
			} else {
				g.update(op, func(p *model.Price) { p.Begin = ne })
				m.stats.Shifted++
			}
		}
		m.log.Debug("Resolve overlap", zap.Stringer("old", op), zap.Stringer("new", np), zap.Bool("same", same))
	}

	if survivor != nil {
		m.stats.Absorbed++
		return true
	}
	return false
}

// recoverInvariant turns a panic with ErrInvariant into *err. Other panics go on.
func recoverInvariant(err *error) {
	r := recover()
	if r == nil {
		return
	}
	e, ok := r.(error)
	if !ok || !errors.Is(e, ErrInvariant) {
		panic(r)
	}
	*err = e
}

// fragment returns the part of op remaining in [begin, end). It has no ID.
func fragment(op *model.Price, begin, end time.Time) *model.Price {
	f := *op
	f.ID = 0
	f.Begin = begin
	f.End = end
	return &f
}

func validate(name string, ps []model.Price) error {
	for i := range ps {
		if err := ps[i].Validate(); err != nil {
			return fmt.Errorf("prices: %s price %d: %w", name, i, err)
		}
	}
	return nil
}
