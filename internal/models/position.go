package models

import "time"

// MemberPosition stores a member's canvas coordinates for one family's
// graph. The same member can hold different coordinates in their home
// family's graph and in any family that links them in via a region.
type MemberPosition struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	FamilyID  string    `json:"family_id"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
