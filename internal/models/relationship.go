package models

import "time"

// Parent-child relationship types.
const (
	RelationshipFather = "father"
	RelationshipMother = "mother"
)

// SpouseRelationship links two members as spouses. The pair is undirected
// in meaning; uniqueness is enforced in both orientations before insert.
type SpouseRelationship struct {
	ID           string    `json:"id"`
	Member1ID    string    `json:"member1_id"`
	Member2ID    string    `json:"member2_id"`
	MarriageDate *string   `json:"marriage_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// ParentChildRelationship links a parent member to a child member.
// Uniqueness is on (parent, child, type).
type ParentChildRelationship struct {
	ID               string    `json:"id"`
	ParentID         string    `json:"parent_id"`
	ChildID          string    `json:"child_id"`
	RelationshipType string    `json:"relationship_type"`
	CreatedAt        time.Time `json:"created_at"`
}
