package bookings

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// CanConfirm reports whether a paid booking may move to CONFIRMED from s
func (s Status) CanConfirm() bool {
	return s == StatusPending
}
