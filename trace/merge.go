package trace

// Merge folds a candidate result into r, the running best, and returns true if
// the candidate became the new nearest hit.
//
// The merged Fraction is the smallest effective fraction of the two, AllSolid and
// StartSolid are or-ed, and FractionLeftSolid together with StartPos comes from the
// start solid trace that stayed embedded the longest. These three never depend on
// the order results are merged in. The remaining hit fields follow the nearest hit,
// or on equal fractions the trace that is embedded deepest, so a trace that starts
// inside a body and leaves it still reports that body.
func (r *Result) Merge(c *Result) bool {
	allSolid := r.AllSolid || c.AllSolid
	startSolid := r.StartSolid || c.StartSolid

	fls, startPos := r.FractionLeftSolid, r.StartPos
	if c.StartSolid != r.StartSolid {
		if c.StartSolid {
			fls, startPos = c.FractionLeftSolid, c.StartPos
		}
	} else if c.FractionLeftSolid > r.FractionLeftSolid {
		fls, startPos = c.FractionLeftSolid, c.StartPos
	}

	cf, rf := c.effectiveFraction(), r.effectiveFraction()
	won := cf < rf || (cf == rf && c.embeddedDeeper(r))
	if won {
		*r = *c
	}

	r.AllSolid, r.StartSolid = allSolid, startSolid
	r.FractionLeftSolid, r.StartPos = fls, startPos
	if allSolid {
		r.Fraction = 0
	}
	return won
}

// embeddedDeeper breaks a tie on fraction: all solid beats start solid, which beats
// neither, and between two start solid traces the one left later wins.
func (r *Result) embeddedDeeper(o *Result) bool {
	switch {
	case r.AllSolid != o.AllSolid:
		return r.AllSolid
	case r.StartSolid != o.StartSolid:
		return r.StartSolid
	case r.StartSolid:
		return r.FractionLeftSolid > o.FractionLeftSolid
	}
	return false
}

// ClipTraceToTrace merges clip into final. See Result.Merge.
func ClipTraceToTrace(clip, final *Result) bool {
	return final.Merge(clip)
}
