package importer

import (
	"database/sql"
	"fmt"

	"kintree/internal/database"
	"kintree/internal/models"
)

// resolver decides, for one import run, whether an original id refers to a
// member that already exists in the store. Lookups hit the members table
// through the run's transaction and are cached for the rest of the run;
// nothing survives past a single Engine.Run call.
type resolver struct {
	tx    database.DBTX
	cache map[string]*models.Member
}

func newResolver(tx database.DBTX) *resolver {
	return &resolver{tx: tx, cache: make(map[string]*models.Member)}
}

// resolve looks up an existing member by id. Returns nil without error when
// no such member exists.
func (r *resolver) resolve(originalID string) (*models.Member, error) {
	if member, ok := r.cache[originalID]; ok {
		return member, nil
	}

	query := `
		SELECT id, family_id, name, surname, gender, birth_date, death_date,
			is_deceased, is_fuzzy, remark, birth_place, photo_url, sort_order,
			created_at, updated_at
		FROM members WHERE id = ?
	`
	member := &models.Member{}
	err := r.tx.QueryRow(query, originalID).Scan(&member.ID, &member.FamilyID, &member.Name,
		&member.Surname, &member.Gender, &member.BirthDate, &member.DeathDate,
		&member.IsDeceased, &member.IsFuzzy, &member.Remark, &member.BirthPlace,
		&member.PhotoURL, &member.SortOrder, &member.CreatedAt, &member.UpdatedAt)
	if err == sql.ErrNoRows {
		r.cache[originalID] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member %s: %w", originalID, err)
	}

	r.cache[originalID] = member
	return member, nil
}
