package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hydrosense-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresHouseholdsRepository 家庭Repository实现
type PostgresHouseholdsRepository struct {
	db DBTX
}

// NewPostgresHouseholdsRepository 创建家庭Repository
func NewPostgresHouseholdsRepository(db DBTX) *PostgresHouseholdsRepository {
	return &PostgresHouseholdsRepository{db: db}
}

// 确保实现了接口
var _ HouseholdsRepository = (*PostgresHouseholdsRepository)(nil)

const householdColumns = `
	household_id::text,
	name,
	residents,
	sensor_id,
	COALESCE(street, ''),
	COALESCE(city, ''),
	COALESCE(zip_code, ''),
	COALESCE(country, ''),
	created_at,
	updated_at
`

func scanHousehold(row interface{ Scan(...any) error }) (*domain.Household, error) {
	var h domain.Household
	err := row.Scan(
		&h.HouseholdID,
		&h.Name,
		&h.Residents,
		&h.SensorID,
		&h.Street,
		&h.City,
		&h.ZipCode,
		&h.Country,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetHousehold 按 household_id 查询
func (r *PostgresHouseholdsRepository) GetHousehold(ctx context.Context, householdID string) (*domain.Household, error) {
	query := `SELECT ` + householdColumns + ` FROM app.households WHERE household_id = $1`

	h, err := scanHousehold(r.db.QueryRowContext(ctx, query, householdID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	return h, nil
}

// GetHouseholdBySensor 按传感器ID查询
func (r *PostgresHouseholdsRepository) GetHouseholdBySensor(ctx context.Context, sensorID string) (*domain.Household, error) {
	query := `SELECT ` + householdColumns + ` FROM app.households WHERE lower(sensor_id) = lower($1)`

	h, err := scanHousehold(r.db.QueryRowContext(ctx, query, sensorID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get household by sensor: %w", err)
	}
	return h, nil
}

// ListHouseholdsForUser 查询用户所属的全部家庭
func (r *PostgresHouseholdsRepository) ListHouseholdsForUser(ctx context.Context, userID string) ([]*domain.Household, error) {
	query := `
		SELECT
			h.household_id::text,
			h.name,
			h.residents,
			h.sensor_id,
			COALESCE(h.street, ''),
			COALESCE(h.city, ''),
			COALESCE(h.zip_code, ''),
			COALESCE(h.country, ''),
			h.created_at,
			h.updated_at
		FROM app.households h
		JOIN app.household_users hu ON hu.household_id = h.household_id
		WHERE hu.user_id = $1
		ORDER BY h.name, h.household_id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list households for user: %w", err)
	}
	defer rows.Close()

	var out []*domain.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan household: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CreateHousehold 创建家庭
func (r *PostgresHouseholdsRepository) CreateHousehold(ctx context.Context, h *domain.Household) (string, error) {
	id := h.HouseholdID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO app.households (household_id, name, residents, sensor_id, street, city, zip_code, country)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		RETURNING household_id::text
	`
	err := r.db.QueryRowContext(ctx, query,
		id, h.Name, h.Residents, strings.ToLower(h.SensorID),
		h.Street, h.City, h.ZipCode, h.Country,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create household: %w", err)
	}
	return id, nil
}

// UpdateHousehold 部分更新
func (r *PostgresHouseholdsRepository) UpdateHousehold(ctx context.Context, householdID string, patch HouseholdPatch) error {
	set := []string{"updated_at = NOW()"}
	args := []any{householdID}
	argIdx := 2

	addSet := func(col string, v any) {
		set = append(set, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, v)
		argIdx++
	}

	if patch.Name != nil {
		addSet("name", *patch.Name)
	}
	if patch.Residents != nil {
		addSet("residents", *patch.Residents)
	}
	if patch.SensorID != nil {
		addSet("sensor_id", strings.ToLower(*patch.SensorID))
	}
	if patch.Street != nil {
		addSet("street", *patch.Street)
	}
	if patch.City != nil {
		addSet("city", *patch.City)
	}
	if patch.ZipCode != nil {
		addSet("zip_code", *patch.ZipCode)
	}
	if patch.Country != nil {
		addSet("country", *patch.Country)
	}

	query := fmt.Sprintf(`UPDATE app.households SET %s WHERE household_id = $1`, strings.Join(set, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update household: %w", err)
	}
	return nil
}

// DeleteHousehold 删除家庭（成员/标签/事件/邀请由外键级联删除）
func (r *PostgresHouseholdsRepository) DeleteHousehold(ctx context.Context, householdID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app.households WHERE household_id = $1`, householdID); err != nil {
		return fmt.Errorf("failed to delete household: %w", err)
	}
	return nil
}

// PostgresHouseholdUsersRepository 家庭成员Repository实现
type PostgresHouseholdUsersRepository struct {
	db DBTX
}

// NewPostgresHouseholdUsersRepository 创建家庭成员Repository
func NewPostgresHouseholdUsersRepository(db DBTX) *PostgresHouseholdUsersRepository {
	return &PostgresHouseholdUsersRepository{db: db}
}

var _ HouseholdUsersRepository = (*PostgresHouseholdUsersRepository)(nil)

// GetMembership 查询成员关系
func (r *PostgresHouseholdUsersRepository) GetMembership(ctx context.Context, householdID, userID string) (*domain.HouseholdUser, error) {
	query := `
		SELECT household_id::text, user_id::text, role, created_at
		FROM app.household_users
		WHERE household_id = $1 AND user_id = $2
	`
	var m domain.HouseholdUser
	err := r.db.QueryRowContext(ctx, query, householdID, userID).Scan(
		&m.HouseholdID, &m.UserID, &m.Role, &m.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

// ListMembers 查询家庭全部成员
func (r *PostgresHouseholdUsersRepository) ListMembers(ctx context.Context, householdID string) ([]*domain.HouseholdUser, error) {
	query := `
		SELECT household_id::text, user_id::text, role, created_at
		FROM app.household_users
		WHERE household_id = $1
		ORDER BY created_at, user_id
	`
	rows, err := r.db.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var out []*domain.HouseholdUser
	for rows.Next() {
		var m domain.HouseholdUser
		if err := rows.Scan(&m.HouseholdID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// AddMember 添加成员
func (r *PostgresHouseholdUsersRepository) AddMember(ctx context.Context, m *domain.HouseholdUser) error {
	query := `
		INSERT INTO app.household_users (household_id, user_id, role)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, m.HouseholdID, m.UserID, m.Role); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember 移除成员
func (r *PostgresHouseholdUsersRepository) RemoveMember(ctx context.Context, householdID, userID string) error {
	query := `DELETE FROM app.household_users WHERE household_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, householdID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// CountAdmins 统计 admin 数量
func (r *PostgresHouseholdUsersRepository) CountAdmins(ctx context.Context, householdID string) (int, error) {
	query := `SELECT COUNT(*) FROM app.household_users WHERE household_id = $1 AND role = 'admin'`
	var n int
	if err := r.db.QueryRowContext(ctx, query, householdID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}
