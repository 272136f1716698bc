package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/escuela9/portal/core/group"
)

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

type groupRow struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	Students   group.Students `db:"students"`
	TeacherIDs pq.StringArray `db:"teacher_ids"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (row groupRow) group() group.Group {
	return group.Group{
		ID:         row.ID,
		Name:       row.Name,
		Students:   row.Students,
		TeacherIDs: row.TeacherIDs,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

const groupColumns = "id, name, students, teacher_ids, created_at, updated_at"

func (repo *groupRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	var id string
	err := repo.db.GetContext(ctx, &id, "SELECT id FROM groups WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking group uniqueness")
	}
	return group.ErrNameExists
}

func (repo *groupRepository) CreateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	g.ID = uuid.New().String()
	var row groupRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO groups (id, name, students, teacher_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+groupColumns,
		g.ID, g.Name, g.Students, pq.StringArray(g.TeacherIDs), g.CreatedAt,
	)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return row.group(), nil
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.Group, error) {
	var rows []groupRow
	err := repo.db.SelectContext(ctx, &rows, "SELECT "+groupColumns+" FROM groups ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	return rowsToGroups(rows), nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	var row groupRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+groupColumns+" FROM groups WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, errors.Wrap(err, "fetching group")
	}
	return row.group(), nil
}

func (repo *groupRepository) QueryGroupsByTeacher(ctx context.Context, teacherID string) ([]group.Group, error) {
	var rows []groupRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT "+groupColumns+" FROM groups WHERE $1 = ANY(teacher_ids) ORDER BY name", teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying groups by teacher")
	}
	return rowsToGroups(rows), nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	var row groupRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE groups SET
			name        = COALESCE(NULLIF($2, ''), name),
			students    = $3,
			teacher_ids = $4,
			updated_at  = $5
		WHERE id = $1
		RETURNING `+groupColumns,
		g.ID, g.Name, g.Students, pq.StringArray(g.TeacherIDs), g.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	return row.group(), nil
}

func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ANY($1)", pq.StringArray(ids))
	return errors.Wrap(err, "deleting groups")
}

func rowsToGroups(rows []groupRow) []group.Group {
	groups := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, row.group())
	}
	return groups
}
