package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/escuela9/portal/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    time.Time      `db:"last_login"`
}

func (row userRow) user() user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     row.IsActive,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin,
	}
}

const userColumns = "id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login"

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	check := func(column, value string) (bool, error) {
		if value == "" {
			return false, nil
		}
		query := "SELECT id FROM users WHERE " + column + " = $1"
		args := []interface{}{value}
		if len(excludedUsers) > 0 {
			ids := make([]string, 0, len(excludedUsers))
			for _, usr := range excludedUsers {
				ids = append(ids, usr.ID)
			}
			query += " AND NOT (id = ANY($2))"
			args = append(args, pq.StringArray(ids))
		}

		var id string
		err := repo.db.GetContext(ctx, &id, query, args...)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, errors.Wrap(err, "checking user uniqueness")
		}
		return true, nil
	}

	if taken, err := check("username", username); err != nil {
		return err
	} else if taken {
		return user.ErrUsernameExists
	}
	if taken, err := check("email", email); err != nil {
		return err
	} else if taken {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	var row userRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO users (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, 'epoch')
		RETURNING `+userColumns,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.IsActive,
		pq.StringArray(usr.Roles), usr.PasswordHash, usr.CreatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.user(), nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	err := repo.db.SelectContext(ctx, &rows, "SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "fetching user")
	}
	return row.user(), nil
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM users WHERE username = $1 OR email = $1", username)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "fetching user")
	}
	return row.user(), nil
}

// UpdateUser applies a partial update. Zero-valued fields keep the stored
// value; isActive is applied only when non-nil.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE users SET
			name          = COALESCE(NULLIF($2, ''), name),
			username      = COALESCE(NULLIF($3, ''), username),
			email         = COALESCE(NULLIF($4, ''), email),
			is_active     = COALESCE($5, is_active),
			roles         = CASE WHEN $6::text[] IS NULL THEN roles ELSE $6 END,
			password_hash = CASE WHEN $7::bytea IS NULL THEN password_hash ELSE $7 END,
			updated_at    = CASE WHEN $8::timestamptz IS NULL THEN updated_at ELSE $8 END,
			last_login    = CASE WHEN $9::timestamptz IS NULL THEN last_login ELSE $9 END
		WHERE id = $1
		RETURNING `+userColumns,
		usr.ID, usr.Name, usr.Username, usr.Email, isActive,
		rolesArg(usr.Roles), passwordArg(usr.PasswordHash),
		timeArg(usr.UpdatedAt), timeArg(usr.LastLogin),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return row.user(), nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, "DELETE FROM users WHERE id = ANY($1)", pq.StringArray(ids))
	return errors.Wrap(err, "deleting users")
}

func rolesArg(roles []string) interface{} {
	if roles == nil {
		return nil
	}
	return pq.StringArray(roles)
}

func passwordArg(hash []byte) interface{} {
	if len(hash) == 0 {
		return nil
	}
	return hash
}

func timeArg(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
