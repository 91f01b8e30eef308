package domain

type (
	Email    = string
	Password = string
	UserId   = int64

	PostId    = int64
	RequestId = int64
	MsgId     = int64
)

// Role values. Stored as text in postgres.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleDonor    Role = "DONOR"
	RoleReceiver Role = "RECEIVER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDonor || r == RoleReceiver
}

// PostStatus values for the food post lifecycle.
type PostStatus string

const (
	PostAvailable PostStatus = "AVAILABLE"
	PostDonated   PostStatus = "DONATED"
	PostDelivered PostStatus = "DELIVERED"
)

// RequestStatus values for the donation request state machine.
// PENDING is the only non-terminal state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}
