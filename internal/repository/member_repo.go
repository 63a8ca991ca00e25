package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"kintree/internal/database"
	"kintree/internal/models"
)

const memberColumns = "id, family_id, name, surname, gender, birth_date, death_date, " +
	"is_deceased, is_fuzzy, remark, birth_place, photo_url, sort_order, created_at, updated_at"

// MemberRepository handles database operations for members
type MemberRepository struct {
	db *database.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// CreateMember inserts a new member. An ID is assigned if the caller did not
// provide one.
func (r *MemberRepository) CreateMember(member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()

	query := `
		INSERT INTO members (id, family_id, name, surname, gender, birth_date, death_date,
			is_deceased, is_fuzzy, remark, birth_place, photo_url, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, member.ID, member.FamilyID, member.Name, member.Surname,
		member.Gender, member.BirthDate, member.DeathDate, member.IsDeceased, member.IsFuzzy,
		member.Remark, member.BirthPlace, member.PhotoURL, member.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetMemberByID retrieves a member by ID
func (r *MemberRepository) GetMemberByID(memberID string) (*models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE id = ?"
	member := &models.Member{}
	err := scanMember(r.db.QueryRow(query, memberID), member)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// ListByFamily retrieves a page of members whose home family is familyID
func (r *MemberRepository) ListByFamily(familyID string, limit, offset int) ([]models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE family_id = ? ORDER BY sort_order ASC, created_at ASC LIMIT ? OFFSET ?"
	rows, err := r.db.Query(query, familyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()
	return collectMembers(rows)
}

// ListByFamilies retrieves all members whose home family is in familyIDs,
// bounded by limit
func (r *MemberRepository) ListByFamilies(familyIDs []string, limit int) ([]models.Member, error) {
	if len(familyIDs) == 0 {
		return nil, nil
	}

	query := "SELECT " + memberColumns + " FROM members WHERE family_id IN (" +
		placeholders(len(familyIDs)) + ") ORDER BY sort_order ASC, created_at ASC LIMIT ?"
	args := append(stringArgs(familyIDs), limit)
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()
	return collectMembers(rows)
}

// ListExplicitRegionMembers retrieves members explicitly assigned to any
// region hosted by the given family, regardless of their home family
func (r *MemberRepository) ListExplicitRegionMembers(hostFamilyID string, limit int) ([]models.Member, error) {
	query := `
		SELECT DISTINCT m.id, m.family_id, m.name, m.surname, m.gender, m.birth_date, m.death_date,
			m.is_deceased, m.is_fuzzy, m.remark, m.birth_place, m.photo_url, m.sort_order,
			m.created_at, m.updated_at
		FROM members m
		INNER JOIN member_regions mr ON mr.member_id = m.id
		INNER JOIN regions rg ON rg.id = mr.region_id
		WHERE rg.family_id = ?
		LIMIT ?
	`
	rows, err := r.db.Query(query, hostFamilyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query region members: %w", err)
	}
	defer rows.Close()
	return collectMembers(rows)
}

// ExplicitRegionIDs retrieves the explicit region memberships of the given
// members as a member-id keyed map
func (r *MemberRepository) ExplicitRegionIDs(memberIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(memberIDs) == 0 {
		return result, nil
	}

	query := "SELECT member_id, region_id FROM member_regions WHERE member_id IN (" +
		placeholders(len(memberIDs)) + ")"
	rows, err := r.db.Query(query, stringArgs(memberIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query region memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID, regionID string
		if err := rows.Scan(&memberID, &regionID); err != nil {
			return nil, fmt.Errorf("failed to scan region membership: %w", err)
		}
		result[memberID] = append(result[memberID], regionID)
	}

	return result, rows.Err()
}

// UpdateMember updates a member's mutable fields
func (r *MemberRepository) UpdateMember(member *models.Member) error {
	query := `
		UPDATE members
		SET name = ?, surname = ?, gender = ?, birth_date = ?, death_date = ?,
			is_deceased = ?, is_fuzzy = ?, remark = ?, birth_place = ?, photo_url = ?,
			sort_order = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, member.Name, member.Surname, member.Gender, member.BirthDate,
		member.DeathDate, member.IsDeceased, member.IsFuzzy, member.Remark, member.BirthPlace,
		member.PhotoURL, member.SortOrder, member.ID)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

// DeleteMember deletes a member in one transaction: its explicit region
// memberships are removed first, and any region left without explicit
// members is garbage-collected unless it still links an external family.
// Garbage collection is best-effort; its failure never blocks the deletion.
func (r *MemberRepository) DeleteMember(memberID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	regionIDs, err := memberRegionIDs(tx, memberID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM member_regions WHERE member_id = ?", memberID); err != nil {
		return fmt.Errorf("failed to remove region memberships: %w", err)
	}

	if err := collectEmptyRegions(tx, regionIDs); err != nil {
		log.Printf("Region cleanup after deleting member %s failed: %v", memberID, err)
	}

	if _, err := tx.Exec("DELETE FROM members WHERE id = ?", memberID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// memberRegionIDs returns the ids of regions the member explicitly belongs to
func memberRegionIDs(q database.DBTX, memberID string) ([]string, error) {
	rows, err := q.Query("SELECT region_id FROM member_regions WHERE member_id = ?", memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query member regions: %w", err)
	}
	defer rows.Close()

	var regionIDs []string
	for rows.Next() {
		var regionID string
		if err := rows.Scan(&regionID); err != nil {
			return nil, fmt.Errorf("failed to scan region id: %w", err)
		}
		regionIDs = append(regionIDs, regionID)
	}

	return regionIDs, rows.Err()
}

// collectEmptyRegions deletes the given regions if their explicit membership
// dropped to zero and they carry no linked family
func collectEmptyRegions(q database.DBTX, regionIDs []string) error {
	for _, regionID := range regionIDs {
		var remaining int
		err := q.QueryRow("SELECT COUNT(*) FROM member_regions WHERE region_id = ?", regionID).Scan(&remaining)
		if err != nil {
			return fmt.Errorf("failed to count region members: %w", err)
		}
		if remaining > 0 {
			continue
		}

		var linkedFamilyID *string
		err = q.QueryRow("SELECT linked_family_id FROM regions WHERE id = ?", regionID).Scan(&linkedFamilyID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load region: %w", err)
		}
		if linkedFamilyID != nil {
			// A linked region still renders its external family
			continue
		}

		if _, err := q.Exec("DELETE FROM regions WHERE id = ?", regionID); err != nil {
			return fmt.Errorf("failed to delete empty region: %w", err)
		}
		log.Printf("Deleted empty region %s", regionID)
	}

	return nil
}

// scanMember scans a member row from a single-row query
func scanMember(row *sql.Row, member *models.Member) error {
	return row.Scan(&member.ID, &member.FamilyID, &member.Name, &member.Surname, &member.Gender,
		&member.BirthDate, &member.DeathDate, &member.IsDeceased, &member.IsFuzzy, &member.Remark,
		&member.BirthPlace, &member.PhotoURL, &member.SortOrder, &member.CreatedAt, &member.UpdatedAt)
}

// collectMembers drains a multi-row member query
func collectMembers(rows *sql.Rows) ([]models.Member, error) {
	var members []models.Member
	for rows.Next() {
		var member models.Member
		if err := rows.Scan(&member.ID, &member.FamilyID, &member.Name, &member.Surname,
			&member.Gender, &member.BirthDate, &member.DeathDate, &member.IsDeceased,
			&member.IsFuzzy, &member.Remark, &member.BirthPlace, &member.PhotoURL,
			&member.SortOrder, &member.CreatedAt, &member.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
