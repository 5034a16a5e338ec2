package revision

// Diff computes the changed-field projections between two snapshots of a
// record. Keys present in either snapshot with differing values appear in
// both returned maps; unchanged fields are omitted entirely.
//
// A key missing from one side is treated as nil on that side, so field
// clearing ("bio": "x" → nil) is representable.
func Diff(before, after Fields) (Fields, Fields) {
	changedBefore := Fields{}
	changedAfter := Fields{}

	for key, oldValue := range before {
		newValue, ok := after[key]
		if !ok {
			newValue = nil
		}
		if !equal(oldValue, newValue) {
			changedBefore[key] = oldValue
			changedAfter[key] = newValue
		}
	}

	for key, newValue := range after {
		if _, ok := before[key]; ok {
			continue
		}
		if !equal(nil, newValue) {
			changedBefore[key] = nil
			changedAfter[key] = newValue
		}
	}

	if len(changedBefore) == 0 {
		return nil, nil
	}
	return changedBefore, changedAfter
}

// equal compares JSON-scalar field values. Ledger projections hold strings,
// numbers, bools, and nils; pointers must be dereferenced by the caller
// before building the snapshot maps.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}
