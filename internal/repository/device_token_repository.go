package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/laboserve/laboserve-api/internal/models"
)

// DeviceTokenRepository stores push-notification registrations.
type DeviceTokenRepository struct {
	db *sqlx.DB
}

// NewDeviceTokenRepository creates a new device token repository.
func NewDeviceTokenRepository(db *sqlx.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Upsert registers a token for a user, taking ownership away from any
// previous registrant of the same token.
func (r *DeviceTokenRepository) Upsert(ctx context.Context, token *models.DeviceToken) error {
	const query = `INSERT INTO device_tokens (token, user_id, role, updated_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, role = EXCLUDED.role, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, token.Role); err != nil {
		return fmt.Errorf("upsert device token: %w", err)
	}
	return nil
}

// ListByRole returns all tokens registered by users holding the role.
func (r *DeviceTokenRepository) ListByRole(ctx context.Context, role models.UserRole) ([]string, error) {
	var tokens []string
	if err := r.db.SelectContext(ctx, &tokens, `SELECT token FROM device_tokens WHERE role = $1`, role); err != nil {
		return nil, fmt.Errorf("list device tokens by role: %w", err)
	}
	return tokens, nil
}

// ListByUser returns all tokens registered by one user.
func (r *DeviceTokenRepository) ListByUser(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	if err := r.db.SelectContext(ctx, &tokens, `SELECT token FROM device_tokens WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("list device tokens by user: %w", err)
	}
	return tokens, nil
}

// Delete removes a token registration, typically on logout.
func (r *DeviceTokenRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM device_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete device token: %w", err)
	}
	return nil
}
