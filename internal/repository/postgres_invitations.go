package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hydrosense-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresInvitationsRepository 家庭邀请Repository实现
type PostgresInvitationsRepository struct {
	db DBTX
}

// NewPostgresInvitationsRepository 创建家庭邀请Repository
func NewPostgresInvitationsRepository(db DBTX) *PostgresInvitationsRepository {
	return &PostgresInvitationsRepository{db: db}
}

// 确保实现了接口
var _ InvitationsRepository = (*PostgresInvitationsRepository)(nil)

const invitationColumns = `
	invitation_id::text,
	household_id::text,
	invited_email,
	COALESCE(inviter_id::text, ''),
	token,
	status,
	expires_at,
	created_at
`

func scanInvitation(row interface{ Scan(...any) error }) (*domain.HouseholdInvitation, error) {
	var inv domain.HouseholdInvitation
	err := row.Scan(
		&inv.InvitationID,
		&inv.HouseholdID,
		&inv.InvitedEmail,
		&inv.InviterID,
		&inv.Token,
		&inv.Status,
		&inv.ExpiresAt,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvitation 按 invitation_id 查询
func (r *PostgresInvitationsRepository) GetInvitation(ctx context.Context, invitationID string) (*domain.HouseholdInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM app.household_invitations WHERE invitation_id = $1`

	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, invitationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// GetInvitationByToken 按 token 查询
func (r *PostgresInvitationsRepository) GetInvitationByToken(ctx context.Context, token string) (*domain.HouseholdInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM app.household_invitations WHERE token = $1`

	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation by token: %w", err)
	}
	return inv, nil
}

// ListInvitations 查询家庭的全部邀请
func (r *PostgresInvitationsRepository) ListInvitations(ctx context.Context, householdID string) ([]*domain.HouseholdInvitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM app.household_invitations
		WHERE household_id = $1
		ORDER BY created_at DESC, invitation_id
	`
	rows, err := r.db.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var out []*domain.HouseholdInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// CreateInvitation 创建邀请
func (r *PostgresInvitationsRepository) CreateInvitation(ctx context.Context, inv *domain.HouseholdInvitation) (string, error) {
	id := inv.InvitationID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO app.household_invitations (
			invitation_id, household_id, invited_email, inviter_id, token, status, expires_at
		) VALUES ($1, $2, lower($3), NULLIF($4, '')::uuid, $5, $6, $7)
		RETURNING invitation_id::text
	`
	err := r.db.QueryRowContext(ctx, query,
		id, inv.HouseholdID, inv.InvitedEmail, inv.InviterID, inv.Token, inv.Status, inv.ExpiresAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create invitation: %w", err)
	}
	return id, nil
}

// UpdateInvitationStatus 更新邀请状态
func (r *PostgresInvitationsRepository) UpdateInvitationStatus(ctx context.Context, invitationID string, status domain.InvitationStatus) error {
	query := `UPDATE app.household_invitations SET status = $2 WHERE invitation_id = $1`
	if _, err := r.db.ExecContext(ctx, query, invitationID, status); err != nil {
		return fmt.Errorf("failed to update invitation status: %w", err)
	}
	return nil
}

// ExpirePendingBefore 批量过期到期的 pending 邀请
func (r *PostgresInvitationsRepository) ExpirePendingBefore(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE app.household_invitations
		SET status = 'expired'
		WHERE status = 'pending' AND expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
