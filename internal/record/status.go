package record

// transitions is the allowed status graph. Deleted has no way out, and
// active records must be trashed before they can be deleted.
var transitions = map[Status][]Status{
	StatusActive:  {StatusTrashed},
	StatusTrashed: {StatusActive, StatusDeleted},
}

// CanTransition reports whether a record may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves r to the target status or returns a *TransitionError.
func (r *Record) Transition(to Status) error {
	if !CanTransition(r.Status, to) {
		return &TransitionError{ID: r.ID, From: r.Status, To: to}
	}
	r.Status = to
	return nil
}
