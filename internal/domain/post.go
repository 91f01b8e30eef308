package domain

import "time"

type FoodPost struct {
	Id         PostId
	DonorId    UserId
	FoodName   string
	Quantity   string
	ExpiryTime string // free-form, e.g. "5", "2 hrs"; see ExpiresAt
	Location   string
	ImageRef   string
	Status     PostStatus
	CreatedAt  time.Time
}

type DonationRequest struct {
	Id          RequestId
	PostId      PostId
	ReceiverId  UserId
	DonorId     UserId // denormalized owner of the post at claim time
	Status      RequestStatus
	RequestedAt time.Time
}
