package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"

	"github.com/mirrorhours/mirror-api/internal/models"
	"github.com/mirrorhours/mirror-api/internal/storage"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUniqueViolation is returned when an insert hits a unique
	// constraint. The constraint, not any pre-check, is the
	// authoritative conflict signal under concurrent requests.
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// Repository provides database operations
type Repository struct {
	store *storage.Store
}

// NewRepository initializes a new repository
func NewRepository(store *storage.Store) *Repository {
	return &Repository{store: store}
}

// CreateUser inserts a new user inside its own transaction.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	tx, err := r.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.store.Rebind(`
		INSERT INTO users (username, email, password_hash)
		VALUES (?, ?, ?)
		RETURNING id`)
	err = tx.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUniqueViolation
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return tx.Commit()
}

// FindUserByUsername retrieves a user by username
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := r.store.Rebind(`
		SELECT id, username, email, password_hash
		FROM users
		WHERE username = ?`)
	err := r.store.DB.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UsernameOrEmailTaken reports whether any user already holds the given
// username or the given email.
func (r *Repository) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	query := r.store.Rebind(`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`)
	var n int
	if err := r.store.DB.QueryRowContext(ctx, query, username, email).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check username/email: %w", err)
	}
	return n > 0, nil
}

// UserExists reports whether a user with the given id exists.
func (r *Repository) UserExists(ctx context.Context, id int) (bool, error) {
	query := r.store.Rebind(`SELECT COUNT(*) FROM users WHERE id = ?`)
	var n int
	if err := r.store.DB.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

// CreateHistoryItem inserts a new history item inside its own
// transaction, stamping saved_at with the current UTC instant.
func (r *Repository) CreateHistoryItem(ctx context.Context, item *models.HistoryItem) error {
	item.SavedAt = time.Now().UTC().Format(models.SavedAtLayout)

	tx, err := r.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.store.Rebind(`
		INSERT INTO history_items (user_id, time, type, thoughts, details, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err = tx.QueryRowContext(ctx, query,
		item.UserID, item.Time, item.Type, item.Thoughts, item.Details, item.SavedAt).
		Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create history item: %w", err)
	}
	return tx.Commit()
}

// ListHistoryByUser returns the user's items newest first. Equal
// timestamps fall back to id descending so the order stays stable.
func (r *Repository) ListHistoryByUser(ctx context.Context, userID int) ([]models.HistoryItem, error) {
	query := r.store.Rebind(`
		SELECT id, user_id, time, type, thoughts, details, saved_at
		FROM history_items
		WHERE user_id = ?
		ORDER BY saved_at DESC, id DESC`)
	rows, err := r.store.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history items: %w", err)
	}
	defer rows.Close()

	items := make([]models.HistoryItem, 0)
	for rows.Next() {
		var item models.HistoryItem
		err := rows.Scan(&item.ID, &item.UserID, &item.Time, &item.Type,
			&item.Thoughts, &item.Details, &item.SavedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history items: %w", err)
	}
	return items, nil
}

// DeleteHistoryItem removes the item with the given id inside its own
// transaction. Returns ErrNotFound when no row was deleted.
func (r *Repository) DeleteHistoryItem(ctx context.Context, id int) error {
	tx, err := r.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.store.Rebind(`DELETE FROM history_items WHERE id = ?`)
	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete history item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		// SQLITE_CONSTRAINT_PRIMARYKEY and SQLITE_CONSTRAINT_UNIQUE
		return sqErr.Code() == 1555 || sqErr.Code() == 2067
	}
	return false
}
