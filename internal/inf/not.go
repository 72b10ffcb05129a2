package inf

// NotTerm holds at every message of the index where its child does not.
//
// Shift walks the domain with Index.Next and skips positions the child
// matches. The child's next match is cached, so runs of non-matching
// positions cost one index step each and no child shifts.
type NotTerm struct {
	kid *progress
}

// Not creates a negation of child.
func Not(child Term) *NotTerm {
	return &NotTerm{kid: &progress{term: child.Copy()}}
}

func (*NotTerm) termNode() {}

// Child returns the negated term.
func (t *NotTerm) Child() Term { return t.kid.term }

func (t *NotTerm) Shift(c Cursor) (Cursor, error) {
	pos := c
	for {
		next, err := c.index.Next(pos)
		if err != nil {
			return c, err
		}
		if next.End() {
			return next, nil
		}
		if next.Compare(pos) >= 0 {
			return c, NewWrongWayError(pos, next, Always())
		}
		match, err := t.kid.atOrAfter(next)
		if err != nil {
			return c, err
		}
		if match.End() || match.Compare(next) != 0 {
			return next, nil
		}
		pos = next
	}
}

// Copy deep-copies the child and drops cached progress.
func (t *NotTerm) Copy() Term {
	return Not(t.kid.term)
}

func (t *NotTerm) String() string {
	return "(not " + String(t.kid.term) + ")"
}
