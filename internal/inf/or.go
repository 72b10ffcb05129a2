package inf

// OrTerm holds where any child holds.
//
// Shift takes the earliest next match among the children. Children that
// tie on a position all keep it cached and are re-shifted together on the
// following call, so a position is produced once.
type OrTerm struct {
	kids []*progress
}

// Or creates a disjunction. With no children it matches nothing.
func Or(children ...Term) *OrTerm {
	return &OrTerm{kids: newProgress(children)}
}

func (*OrTerm) termNode() {}

// Children returns the child terms.
func (t *OrTerm) Children() []Term { return copyTerms(t.kids) }

func (t *OrTerm) Shift(c Cursor) (Cursor, error) {
	best := c.Ended()
	for _, k := range t.kids {
		next, err := k.after(c)
		if err != nil {
			return c, err
		}
		if next.End() {
			continue
		}
		if best.End() || next.Compare(best) > 0 {
			best = next
		}
	}
	return best, nil
}

// Copy deep-copies the children and drops cached progress.
func (t *OrTerm) Copy() Term {
	return Or(copyTerms(t.kids)...)
}

func (t *OrTerm) String() string { return renderList("or", t.kids) }
