package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"kintree/internal/database"
	"kintree/internal/models"
)

// PositionUpdate carries one member's new coordinates for a bulk save
type PositionUpdate struct {
	MemberID string `json:"member_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// PositionRepository handles database operations for per-family member
// positions
type PositionRepository struct {
	db *database.DB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *database.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// GetPosition retrieves a member's position in one family's graph
func (r *PositionRepository) GetPosition(memberID, familyID string) (*models.MemberPosition, error) {
	query := "SELECT id, member_id, family_id, x, y, created_at, updated_at FROM member_positions WHERE member_id = ? AND family_id = ?"
	pos := &models.MemberPosition{}
	err := r.db.QueryRow(query, memberID, familyID).Scan(&pos.ID, &pos.MemberID, &pos.FamilyID,
		&pos.X, &pos.Y, &pos.CreatedAt, &pos.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	return pos, nil
}

// MapForFamily retrieves the positions of the given members in one family's
// graph, keyed by member id
func (r *PositionRepository) MapForFamily(familyID string, memberIDs []string) (map[string]models.MemberPosition, error) {
	result := make(map[string]models.MemberPosition)
	if len(memberIDs) == 0 {
		return result, nil
	}

	query := "SELECT id, member_id, family_id, x, y, created_at, updated_at FROM member_positions " +
		"WHERE family_id = ? AND member_id IN (" + placeholders(len(memberIDs)) + ")"
	args := append([]interface{}{familyID}, stringArgs(memberIDs)...)
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pos models.MemberPosition
		if err := rows.Scan(&pos.ID, &pos.MemberID, &pos.FamilyID,
			&pos.X, &pos.Y, &pos.CreatedAt, &pos.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		result[pos.MemberID] = pos
	}

	return result, rows.Err()
}

// BulkUpsert saves a batch of positions for one family's graph in a single
// transaction. Existing rows are updated; missing rows are inserted.
func (r *PositionRepository) BulkUpsert(familyID string, updates []PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, update := range updates {
		if err := upsertPosition(tx, familyID, update); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// upsertPosition writes one position row: update first, insert when nothing
// matched. Portable across all three dialects.
func upsertPosition(q database.DBTX, familyID string, update PositionUpdate) error {
	result, err := q.Exec(
		"UPDATE member_positions SET x = ?, y = ?, updated_at = CURRENT_TIMESTAMP WHERE member_id = ? AND family_id = ?",
		update.X, update.Y, update.MemberID, familyID)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	_, err = q.Exec(
		"INSERT INTO member_positions (id, member_id, family_id, x, y) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), update.MemberID, familyID, update.X, update.Y)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}
