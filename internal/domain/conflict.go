package domain

// HasConflict reports whether the candidate range overlaps any of the
// existing ranges. It knows nothing about booking identity and runs in O(n);
// the caller is expected to narrow existing to the same employee/studio and
// a relevant time window before calling. The predicate alone cannot prevent
// a check-then-commit race between two writers; the persistence layer must
// serialize writes per schedule key.
func HasConflict(candidate TimeRange, existing []TimeRange) bool {
	for _, r := range existing {
		if candidate.Overlaps(r) {
			return true
		}
	}
	return false
}
