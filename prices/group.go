package prices

import (
	"time"

	"github.com/emirpasic/gods/v2/trees/redblacktree"
	"github.com/liznear/price-merge/model"
)

type node = redblacktree.Node[bound, struct{}]

// group is the ordered set of prices sharing one GroupKey.
//
// While prices in a group don't overlap, ordering them by begin also orders them by end.
// That's what makes probing with begin and end bounds meaningful. A group holding
// overlapping prices is still ordered, but crossing has to scan it.
type group struct {
	key  model.GroupKey
	tree *redblacktree.Tree[bound, struct{}]

	seqs    map[*model.Price]uint64
	lastSeq uint64
	// overlapping is set once two prices of the group have overlapped. It is never reset.
	overlapping bool
}

func newGroup(key model.GroupKey) *group {
	return &group{
		key:  key,
		tree: redblacktree.NewWith[bound, struct{}](compareBounds),
		seqs: make(map[*model.Price]uint64),
	}
}

// add adds p to the group. p may overlap prices already in the group, or even have the
// same period as one of them.
func (g *group) add(p *model.Price) {
	seq, ok := g.seqs[p]
	if !ok {
		g.lastSeq++
		seq = g.lastSeq
		g.seqs[p] = seq
	}
	b := priceBound(p, seq)
	if !g.overlapping && g.overlaps(b) {
		g.overlapping = true
	}
	g.tree.Put(b, struct{}{})
}

// overlaps reports whether b overlaps one of its neighbors. In a group without
// overlapping prices, no other price can overlap b.
func (g *group) overlaps(b bound) bool {
	if n, ok := g.tree.Floor(b); ok && model.HasOverlap(n.Key.price.Period(), b.price.Period()) {
		return true
	}
	if n, ok := g.tree.Ceiling(b); ok && model.HasOverlap(n.Key.price.Period(), b.price.Period()) {
		return true
	}
	return false
}

func (g *group) remove(p *model.Price) {
	g.tree.Remove(priceBound(p, g.seqs[p]))
}

// update applies f to p, which is in the group. p is taken out of the tree while f
// changes its period.
func (g *group) update(p *model.Price, f func(p *model.Price)) {
	g.remove(p)
	f(p)
	g.add(p)
}

// crossing returns the prices strictly between end(begin) and begin(end), which are
// exactly the prices overlapping (begin, end). Prices only touching the range are
// not included.
//
// The returned slice is a snapshot. The caller may modify the group while walking it.
func (g *group) crossing(begin, end time.Time) []*model.Price {
	if g.overlapping {
		return g.scan(begin, end)
	}

	lo, hi := endBound(begin), beginBound(end)
	n, ok := g.tree.Ceiling(lo)
	if !ok {
		return nil
	}
	for n != nil && compareBounds(n.Key, lo) == 0 {
		n = successor(n)
	}

	var ret []*model.Price
	for ; n != nil && compareBounds(n.Key, hi) < 0; n = successor(n) {
		ret = append(ret, n.Key.price)
	}
	return ret
}

// scan is crossing for a group with overlapping prices: ends are not ordered, so every
// price beginning before end is checked.
func (g *group) scan(begin, end time.Time) []*model.Price {
	hi := beginBound(end)
	var ret []*model.Price
	for n := g.tree.Left(); n != nil && compareBounds(n.Key, hi) < 0; n = successor(n) {
		if n.Key.price.End.After(begin) {
			ret = append(ret, n.Key.price)
		}
	}
	return ret
}

// values returns the prices in the group ordered by begin.
func (g *group) values() []*model.Price {
	keys := g.tree.Keys()
	ret := make([]*model.Price, 0, len(keys))
	for _, k := range keys {
		ret = append(ret, k.price)
	}
	return ret
}

func (g *group) size() int {
	return g.tree.Size()
}

// successor returns the in-order successor of n, or nil if n is the last node.
func successor(n *node) *node {
	if n.Right != nil {
		n = n.Right
		for n.Left != nil {
			n = n.Left
		}
		return n
	}
	for n.Parent != nil && n == n.Parent.Right {
		n = n.Parent
	}
	return n.Parent
}
