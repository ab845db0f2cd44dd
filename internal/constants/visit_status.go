package constants

// VisitStatus is the lifecycle state of a port call.
// Due → AwaitingBerth → Alongside → Sailed in the happy path,
// with Cancelled as an absorbing alternate state.
type VisitStatus string

const (
	VisitStatusDue           VisitStatus = "Due"
	VisitStatusAwaitingBerth VisitStatus = "Awaiting Berth"
	VisitStatusAlongside     VisitStatus = "Alongside"
	VisitStatusSailed        VisitStatus = "Sailed"
	VisitStatusCancelled     VisitStatus = "Cancelled"
)

func (s VisitStatus) String() string { return string(s) }

// ActiveVisitStatuses are the states in which a visit is still operationally
// live. Ship master-data changes fan out to these regardless of age.
var ActiveVisitStatuses = []VisitStatus{
	VisitStatusDue,
	VisitStatusAwaitingBerth,
	VisitStatusAlongside,
}

// IsActive reports whether the status is one of the active states.
func (s VisitStatus) IsActive() bool {
	for _, a := range ActiveVisitStatuses {
		if s == a {
			return true
		}
	}
	return false
}
