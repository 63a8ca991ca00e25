package models

import "time"

// Member is one person in a family tree. FamilyID is the family the
// member's data belongs to (their home family); the member may still be
// rendered in other families' graphs through region linkage.
type Member struct {
	ID         string    `json:"id"`
	FamilyID   string    `json:"family_id"`
	Name       string    `json:"name"`
	Surname    *string   `json:"surname"`
	Gender     string    `json:"gender"`
	BirthDate  *string   `json:"birth_date"`
	DeathDate  *string   `json:"death_date"`
	IsDeceased bool      `json:"is_deceased"`
	IsFuzzy    bool      `json:"is_fuzzy"`
	Remark     *string   `json:"remark"`
	BirthPlace *string   `json:"birth_place"`
	PhotoURL   *string   `json:"photo_url"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
