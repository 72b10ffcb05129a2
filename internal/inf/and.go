package inf

// AndTerm holds where every child holds.
//
// Shift runs a leapfrog convergence: each child proposes its next match,
// the most advanced proposal becomes the target, and lagging children are
// moved to their first match at or beyond the target until all agree. Any
// child reaching the end ends the conjunction.
type AndTerm struct {
	kids []*progress
}

// And creates a conjunction. With no children it holds everywhere.
func And(children ...Term) *AndTerm {
	return &AndTerm{kids: newProgress(children)}
}

func (*AndTerm) termNode() {}

// Children returns the child terms.
func (t *AndTerm) Children() []Term { return copyTerms(t.kids) }

func (t *AndTerm) Shift(c Cursor) (Cursor, error) {
	if len(t.kids) == 0 {
		return c.index.Next(c)
	}

	cands := make([]Cursor, len(t.kids))
	for i, k := range t.kids {
		next, err := k.after(c)
		if err != nil {
			return c, err
		}
		if next.End() {
			return next, nil
		}
		cands[i] = next
	}

	for {
		target := cands[0]
		for _, cand := range cands[1:] {
			if cand.Compare(target) < 0 {
				target = cand
			}
		}

		aligned := true
		for i, k := range t.kids {
			if cands[i].Compare(target) == 0 {
				continue
			}
			next, err := k.atOrAfter(target)
			if err != nil {
				return c, err
			}
			if next.End() {
				return next, nil
			}
			cands[i] = next
			if next.Compare(target) != 0 {
				aligned = false
			}
		}
		if aligned {
			return target, nil
		}
	}
}

// Copy deep-copies the children and drops cached progress.
func (t *AndTerm) Copy() Term {
	return And(copyTerms(t.kids)...)
}

func (t *AndTerm) String() string { return renderList("and", t.kids) }
