package inf

// progress caches a child term's next match so composite terms do not
// re-shift children that are already ahead of the traversal.
//
// The cache answers "first match strictly beyond c" whenever the cached
// shift started at or before c and landed beyond c (or ended): no match can
// hide between the two positions.
type progress struct {
	term  Term
	from  Cursor
	next  Cursor
	valid bool
}

func newProgress(children []Term) []*progress {
	out := make([]*progress, len(children))
	for i, t := range children {
		out[i] = &progress{term: t.Copy()}
	}
	return out
}

// after returns the child's first match strictly beyond c.
func (p *progress) after(c Cursor) (Cursor, error) {
	if p.valid && p.from.Compare(c) >= 0 && (p.next.End() || p.next.Compare(c) < 0) {
		return p.next, nil
	}
	next, err := c.Shift(p.term)
	if err != nil {
		return c, err
	}
	if !next.End() && next.Compare(c) >= 0 {
		return c, NewWrongWayError(c, next, p.term)
	}
	p.from, p.next, p.valid = c, next, true
	return next, nil
}

// atOrAfter returns the child's first match at pos or beyond it.
func (p *progress) atOrAfter(pos Cursor) (Cursor, error) {
	return p.after(justBefore(pos))
}

func copyTerms(ps []*progress) []Term {
	out := make([]Term, len(ps))
	for i, p := range ps {
		out[i] = p.term
	}
	return out
}
