package importer

// Document is a complete import payload: one family plus its members,
// regions and relationships, all keyed by the ids they carried in the
// originating dataset.
type Document struct {
	FamilyName  string             `json:"family_name"`
	Description *string            `json:"description"`
	OwnerUserID string             `json:"owner_user_id"`
	Members     []MemberRecord     `json:"members"`
	Regions     []RegionRecord     `json:"regions"`
	Spouses     []SpouseRecord     `json:"spouses"`
	ParentChild []ParentChildPair  `json:"parent_child"`
}

// MemberRecord is one member in an import payload. OriginalID is the id the
// member carried in the source dataset; SourceFamilyID is the family the
// member historically belonged to there. RegionIDs reference RegionRecord
// original ids.
type MemberRecord struct {
	OriginalID     string   `json:"original_id"`
	SourceFamilyID string   `json:"source_family_id"`
	RegionIDs      []string `json:"region_ids"`
	Name           string   `json:"name"`
	Surname        *string  `json:"surname"`
	Gender         string   `json:"gender"`
	BirthDate      *string  `json:"birth_date"`
	DeathDate      *string  `json:"death_date"`
	IsDeceased     bool     `json:"is_deceased"`
	IsFuzzy        bool     `json:"is_fuzzy"`
	Remark         *string  `json:"remark"`
	BirthPlace     *string  `json:"birth_place"`
	PhotoURL       *string  `json:"photo_url"`
	SortOrder      int      `json:"sort_order"`
	PositionX      int      `json:"position_x"`
	PositionY      int      `json:"position_y"`
}

// RegionRecord is one region in an import payload
type RegionRecord struct {
	OriginalID     string  `json:"original_id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Color          string  `json:"color"`
	LinkedFamilyID *string `json:"linked_family_id"`
}

// SpouseRecord pairs two members by original id
type SpouseRecord struct {
	Member1OriginalID string  `json:"member1_original_id"`
	Member2OriginalID string  `json:"member2_original_id"`
	MarriageDate      *string `json:"marriage_date"`
}

// ParentChildPair links a parent to a child by original id
type ParentChildPair struct {
	ParentOriginalID string `json:"parent_original_id"`
	ChildOriginalID  string `json:"child_original_id"`
	RelationshipType string `json:"relationship_type"`
}
