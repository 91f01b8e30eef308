package domain

import "time"

type User struct {
	Id         UserId
	Name       string
	Email      Email
	Password   Password `json:"-"`
	Role       Role
	IsVerified bool
	IsBlocked  bool
	CreatedAt  time.Time
}

type Credentials struct {
	Email    Email
	Password Password
}
