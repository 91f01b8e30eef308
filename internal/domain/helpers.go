package domain

import (
	"fmt"
	"strconv"
	"time"
	"unicode"
)

const defaultExpiryHours = 24

// ExpiryHours extracts the leading digit run from a free-form expiry string
// and treats it as a number of hours. "2 hrs" -> 2, "5" -> 5. Strings without
// leading digits fall back to 24. This intentionally mirrors the listing
// behavior of the mobile client that wrote this data: any digit sequence is an
// hour count, even when the string was meant as a date, and a parsed zero is
// honored ("0 hrs" expires immediately).
func ExpiryHours(expiryTime string) int {
	digits := ""
	for _, r := range expiryTime {
		if !unicode.IsDigit(r) {
			break
		}
		digits += string(r)
	}
	if digits == "" {
		return defaultExpiryHours
	}
	hours, err := strconv.Atoi(digits)
	if err != nil {
		return defaultExpiryHours
	}
	return hours
}

// ExpiresAt returns the computed deadline after which the post is no longer
// visible to receivers, independent of its status.
func (p *FoodPost) ExpiresAt() time.Time {
	return p.CreatedAt.Add(time.Duration(ExpiryHours(p.ExpiryTime)) * time.Hour)
}

// AvailableAt reports whether the post should show up in the receiver-facing
// available list at the given moment.
func (p *FoodPost) AvailableAt(now time.Time) bool {
	return p.Status == PostAvailable && now.Before(p.ExpiresAt())
}

// for debug
func (p *FoodPost) String() string {
	return fmt.Sprintf("[id:%d, donor:%d, food:%s, status:%s, expires:%s]",
		p.Id, p.DonorId, p.FoodName, p.Status, p.ExpiresAt().Format(time.StampMilli))
}

func (r *DonationRequest) String() string {
	return fmt.Sprintf("[id:%d, post:%d, receiver:%d, donor:%d, status:%s]",
		r.Id, r.PostId, r.ReceiverId, r.DonorId, r.Status)
}
