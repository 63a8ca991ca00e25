package importer

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"kintree/internal/database"
	"kintree/internal/models"
)

// Engine ingests an import document as one all-or-nothing transaction.
// Members whose declared source family differs from the batch's detected
// source family are linked to existing store members instead of cloned;
// unresolvable links and duplicate relationships are logged and skipped,
// never failed.
type Engine struct {
	db *database.DB
}

// NewEngine creates an import engine
func NewEngine(db *database.DB) *Engine {
	return &Engine{db: db}
}

// Run imports the document and returns the created family. Any storage
// error rolls back every write made by the run.
func (e *Engine) Run(doc *Document) (*models.Family, error) {
	sourceFamilyID := detectSourceFamily(doc.Members)

	tx, err := e.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	family := &models.Family{
		ID:          uuid.NewString(),
		UserID:      doc.OwnerUserID,
		FamilyName:  doc.FamilyName,
		Description: doc.Description,
	}
	_, err = tx.Exec("INSERT INTO families (id, user_id, family_name, description) VALUES (?, ?, ?, ?)",
		family.ID, family.UserID, family.FamilyName, family.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	regionIDs, linkedRegions, err := materializeRegions(tx, family.ID, doc.Regions)
	if err != nil {
		return nil, err
	}

	memberIDs, err := materializeMembers(tx, family.ID, sourceFamilyID, doc.Members, regionIDs, linkedRegions)
	if err != nil {
		return nil, err
	}

	if err := materializeRelationships(tx, doc, memberIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import transaction: %w", err)
	}

	return family, nil
}

// detectSourceFamily picks the most frequent declared source-family id.
// Members that reference any other family are treated as external links.
func detectSourceFamily(members []MemberRecord) string {
	counts := make(map[string]int)
	var order []string
	for _, m := range members {
		if m.SourceFamilyID == "" {
			continue
		}
		if counts[m.SourceFamilyID] == 0 {
			order = append(order, m.SourceFamilyID)
		}
		counts[m.SourceFamilyID]++
	}

	best := ""
	bestCount := 0
	for _, id := range order {
		if counts[id] > bestCount {
			best = id
			bestCount = counts[id]
		}
	}
	return best
}

// materializeRegions creates one region per record and returns the
// original-id mapping plus a linked-family index for member auto-linking
func materializeRegions(tx database.DBTX, familyID string, records []RegionRecord) (map[string]string, map[string][]string, error) {
	regionIDs := make(map[string]string)
	linkedRegions := make(map[string][]string)

	for _, record := range records {
		regionID := uuid.NewString()
		color := record.Color
		if color == "" {
			color = models.DefaultRegionColor
		}

		_, err := tx.Exec(
			"INSERT INTO regions (id, family_id, name, description, color, linked_family_id) VALUES (?, ?, ?, ?, ?, ?)",
			regionID, familyID, record.Name, record.Description, color, record.LinkedFamilyID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create region %q: %w", record.Name, err)
		}

		regionIDs[record.OriginalID] = regionID
		if record.LinkedFamilyID != nil {
			linkedRegions[*record.LinkedFamilyID] = append(linkedRegions[*record.LinkedFamilyID], regionID)
		}
	}

	return regionIDs, linkedRegions, nil
}

// materializeMembers processes member records in input order and returns the
// original-id to store-id map used for relationship resolution
func materializeMembers(tx database.DBTX, familyID, sourceFamilyID string, records []MemberRecord,
	regionIDs map[string]string, linkedRegions map[string][]string) (map[string]string, error) {

	res := newResolver(tx)
	memberIDs := make(map[string]string)

	for _, record := range records {
		var mappedRegions []string
		for _, originalRegionID := range record.RegionIDs {
			if regionID, ok := regionIDs[originalRegionID]; ok {
				mappedRegions = append(mappedRegions, regionID)
			}
		}

		if record.SourceFamilyID != "" && record.SourceFamilyID != sourceFamilyID {
			existing, err := res.resolve(record.OriginalID)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				log.Printf("Import: skipping unresolvable external member %s (%s)", record.OriginalID, record.Name)
				continue
			}

			// Auto-link into regions built for the member's home family
			attachTo := append([]string{}, mappedRegions...)
			attachTo = append(attachTo, linkedRegions[existing.FamilyID]...)
			for _, regionID := range attachTo {
				if err := attachToRegion(tx, existing.ID, regionID); err != nil {
					return nil, err
				}
			}

			if err := ensurePosition(tx, existing.ID, familyID, 0, 0); err != nil {
				return nil, err
			}
			memberIDs[record.OriginalID] = existing.ID
			continue
		}

		memberID := uuid.NewString()
		_, err := tx.Exec(`
			INSERT INTO members (id, family_id, name, surname, gender, birth_date, death_date,
				is_deceased, is_fuzzy, remark, birth_place, photo_url, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			memberID, familyID, record.Name, record.Surname, record.Gender, record.BirthDate,
			record.DeathDate, record.IsDeceased, record.IsFuzzy, record.Remark, record.BirthPlace,
			record.PhotoURL, record.SortOrder)
		if err != nil {
			return nil, fmt.Errorf("failed to create member %q: %w", record.Name, err)
		}

		for _, regionID := range mappedRegions {
			if err := attachToRegion(tx, memberID, regionID); err != nil {
				return nil, err
			}
		}

		if err := ensurePosition(tx, memberID, familyID, record.PositionX, record.PositionY); err != nil {
			return nil, err
		}
		memberIDs[record.OriginalID] = memberID
	}

	return memberIDs, nil
}

// materializeRelationships creates spouse and parent-child rows for every
// pair whose endpoints both resolved during member materialization
func materializeRelationships(tx database.DBTX, doc *Document, memberIDs map[string]string) error {
	for _, record := range doc.Spouses {
		member1ID, ok1 := memberIDs[record.Member1OriginalID]
		member2ID, ok2 := memberIDs[record.Member2OriginalID]
		if !ok1 || !ok2 {
			log.Printf("Import: skipping spouse pair (%s, %s): unresolved endpoint",
				record.Member1OriginalID, record.Member2OriginalID)
			continue
		}

		exists, err := spouseExists(tx, member1ID, member2ID)
		if err != nil {
			return err
		}
		if exists {
			log.Printf("Import: skipping duplicate spouse pair (%s, %s)", member1ID, member2ID)
			continue
		}

		_, err = tx.Exec("INSERT INTO spouse_relationships (id, member1_id, member2_id, marriage_date) VALUES (?, ?, ?, ?)",
			uuid.NewString(), member1ID, member2ID, record.MarriageDate)
		if err != nil {
			return fmt.Errorf("failed to create spouse relationship: %w", err)
		}
	}

	for _, record := range doc.ParentChild {
		parentID, ok1 := memberIDs[record.ParentOriginalID]
		childID, ok2 := memberIDs[record.ChildOriginalID]
		if !ok1 || !ok2 {
			log.Printf("Import: skipping parent-child pair (%s, %s): unresolved endpoint",
				record.ParentOriginalID, record.ChildOriginalID)
			continue
		}

		exists, err := parentChildExists(tx, parentID, childID, record.RelationshipType)
		if err != nil {
			return err
		}
		if exists {
			log.Printf("Import: skipping duplicate parent-child pair (%s, %s, %s)",
				parentID, childID, record.RelationshipType)
			continue
		}

		_, err = tx.Exec("INSERT INTO parent_child_relationships (id, parent_id, child_id, relationship_type) VALUES (?, ?, ?, ?)",
			uuid.NewString(), parentID, childID, record.RelationshipType)
		if err != nil {
			return fmt.Errorf("failed to create parent-child relationship: %w", err)
		}
	}

	return nil
}

func attachToRegion(tx database.DBTX, memberID, regionID string) error {
	var exists int
	err := tx.QueryRow("SELECT COUNT(*) FROM member_regions WHERE member_id = ? AND region_id = ?",
		memberID, regionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check region membership: %w", err)
	}
	if exists > 0 {
		return nil
	}

	if _, err := tx.Exec("INSERT INTO member_regions (member_id, region_id) VALUES (?, ?)",
		memberID, regionID); err != nil {
		return fmt.Errorf("failed to attach member to region: %w", err)
	}
	return nil
}

func ensurePosition(tx database.DBTX, memberID, familyID string, x, y int) error {
	var exists int
	err := tx.QueryRow("SELECT COUNT(*) FROM member_positions WHERE member_id = ? AND family_id = ?",
		memberID, familyID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check position: %w", err)
	}
	if exists > 0 {
		return nil
	}

	if _, err := tx.Exec("INSERT INTO member_positions (id, member_id, family_id, x, y) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), memberID, familyID, x, y); err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	return nil
}

func spouseExists(tx database.DBTX, member1ID, member2ID string) (bool, error) {
	var count int
	err := tx.QueryRow(`
		SELECT COUNT(*) FROM spouse_relationships
		WHERE (member1_id = ? AND member2_id = ?) OR (member1_id = ? AND member2_id = ?)`,
		member1ID, member2ID, member2ID, member1ID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check spouse relationship: %w", err)
	}
	return count > 0, nil
}

func parentChildExists(tx database.DBTX, parentID, childID, relationshipType string) (bool, error) {
	var count int
	err := tx.QueryRow(
		"SELECT COUNT(*) FROM parent_child_relationships WHERE parent_id = ? AND child_id = ? AND relationship_type = ?",
		parentID, childID, relationshipType).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check parent-child relationship: %w", err)
	}
	return count > 0, nil
}
