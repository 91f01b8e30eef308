package domain

import "time"

type Message struct {
	Id         MsgId
	SenderId   UserId
	ReceiverId UserId
	Content    string
	SentAt     time.Time
}
