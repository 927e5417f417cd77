package order

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusAssigned  Status = "assigned"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var ordinals = map[Status]int{
	StatusPending:   1,
	StatusConfirmed: 2,
	StatusAssigned:  3,
	StatusInTransit: 4,
	StatusDelivered: 5,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st == StatusCancelled {
		return st, nil
	}
	if _, ok := ordinals[st]; !ok {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Ordinal is the position in the forward workflow; 0 for cancelled.
func (s Status) Ordinal() int { return ordinals[s] }

// Terminal orders accept no delivery changes.
func (s Status) Terminal() bool { return s == StatusDelivered || s == StatusCancelled }

// CanTransitionTo allows staying put, moving forward and cancelling from
// anywhere. A cancelled order never re-enters the forward workflow because
// its stock has already been returned.
func (s Status) CanTransitionTo(next Status) bool {
	if next == StatusCancelled {
		return true
	}
	if s == StatusCancelled {
		return false
	}
	return next.Ordinal() >= s.Ordinal()
}
