package types

// Collapse resolves a deferred union to its first candidate, which is
// authoritative. bad is the index of the first candidate that differs from
// it, or -1. Nested unions are collapsed first. Non-union types are returned
// unchanged.
func Collapse(t Ty) (ty Ty, bad int) {
	if t.Kind != KindDeferredUnion {
		return t, -1
	}
	if len(t.Candidates) == 0 {
		return Void, -1
	}
	first, bad := Collapse(t.Candidates[0])
	if bad >= 0 {
		return first, 0
	}
	for i := 1; i < len(t.Candidates); i++ {
		c, innerBad := Collapse(t.Candidates[i])
		if innerBad >= 0 || !c.Equal(first) {
			return first, i
		}
	}
	return first, -1
}

// ContainsDeferred reports whether a deferred union appears anywhere in t.
func ContainsDeferred(t Ty) bool {
	switch t.Kind {
	case KindDeferredUnion:
		return true
	case KindFunction:
		for _, p := range t.Params {
			if ContainsDeferred(p) {
				return true
			}
		}
		return t.Result != nil && ContainsDeferred(*t.Result)
	}
	return false
}
