package models

// Status is the order lifecycle state. Orders move forward only, one step
// at a time: PENDING -> PREPARING -> READY -> SERVED -> COMPLETED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusServed    Status = "SERVED"
	StatusCompleted Status = "COMPLETED"
)

var statusOrder = map[Status]Status{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusServed,
	StatusServed:    StatusCompleted,
}

var statusActions = map[Status]string{
	StatusPending:   "Start Preparing",
	StatusPreparing: "Mark Ready",
	StatusReady:     "Mark Served",
	StatusServed:    "Complete Order",
}

// Next returns the single allowed forward transition, or false when the
// status is terminal or unknown.
func (s Status) Next() (Status, bool) {
	next, ok := statusOrder[s]
	return next, ok
}

// Action is the label for the transition out of s, empty for terminal
// statuses.
func (s Status) Action() string {
	return statusActions[s]
}

func (s Status) Valid() bool {
	if s == StatusCompleted {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCompleted}
}
