package history

// weaklyDominates reports whether u is no worse than v in every objective.
func weaklyDominates(u, v []float64) bool {
	for j := range u {
		if u[j] > v[j] {
			return false
		}
	}
	return true
}

// scanOutcome is the result of comparing a candidate against the front.
// When rejected, blocker is the index of the first member that weakly
// dominates the candidate and removals is empty.
type scanOutcome struct {
	rejected bool
	blocker  int
	removals []int
}

// paretoFront holds the non-dominated records in insertion order.
type paretoFront struct {
	members []MORecord
}

// scan walks the front in insertion order. The first member weakly
// dominating p rejects it and stops the scan; members already marked for
// removal before that point are discarded with the outcome.
func (f *paretoFront) scan(p []float64) scanOutcome {
	var removals []int
	for i, q := range f.members {
		if weaklyDominates(q.Objectives, p) {
			return scanOutcome{rejected: true, blocker: i}
		}
		if weaklyDominates(p, q.Objectives) {
			removals = append(removals, i)
		}
	}
	return scanOutcome{removals: removals}
}

// apply inserts rec and drops the members marked by out. It returns the
// removed members. A rejected outcome leaves the front unchanged.
func (f *paretoFront) apply(rec MORecord, out scanOutcome) []MORecord {
	if out.rejected {
		return nil
	}

	var removed []MORecord
	kept := make([]MORecord, 0, len(f.members)+1-len(out.removals))
	next := 0
	for i, m := range f.members {
		if next < len(out.removals) && out.removals[next] == i {
			removed = append(removed, m)
			next++
			continue
		}
		kept = append(kept, m)
	}
	f.members = append(kept, rec)
	return removed
}

func (f *paretoFront) objectives() [][]float64 {
	out := make([][]float64, len(f.members))
	for i, m := range f.members {
		out[i] = m.Objectives
	}
	return out
}
