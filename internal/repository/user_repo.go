package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kintree/internal/database"
	"kintree/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new user account
func (r *UserRepository) CreateUser(email, passwordHash, name string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := "INSERT INTO users (id, email, password_hash, name, is_superuser) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.Exec(query, user.ID, user.Email, user.PasswordHash, user.Name, user.IsSuperuser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(userID string) (*models.User, error) {
	query := "SELECT id, email, password_hash, name, is_superuser, created_at, updated_at FROM users WHERE id = ?"
	return r.scanUser(r.db.QueryRow(query, userID))
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := "SELECT id, email, password_hash, name, is_superuser, created_at, updated_at FROM users WHERE email = ?"
	return r.scanUser(r.db.QueryRow(query, email))
}

// ListUsers retrieves a page of users
func (r *UserRepository) ListUsers(limit, offset int) ([]models.User, error) {
	query := `
		SELECT id, email, password_hash, name, is_superuser, created_at, updated_at
		FROM users
		ORDER BY created_at ASC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name,
			&user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// SetSuperuser updates a user's superuser flag
func (r *UserRepository) SetSuperuser(userID string, isSuperuser bool) error {
	query := "UPDATE users SET is_superuser = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, isSuperuser, userID); err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	return nil
}

// DeleteUser deletes a user account
func (r *UserRepository) DeleteUser(userID string) error {
	query := "DELETE FROM users WHERE id = ?"
	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
