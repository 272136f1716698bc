package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/escuela9/portal/core/teacher"
)

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

type teacherRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Email     string         `db:"email"`
	Age       int            `db:"age"`
	Sex       string         `db:"sex"`
	Phone     string         `db:"phone"`
	PhotoURL  null.String    `db:"photo_url"`
	Subjects  pq.StringArray `db:"subjects"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row teacherRow) teacher() teacher.Teacher {
	return teacher.Teacher{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Age:       row.Age,
		Sex:       row.Sex,
		Phone:     row.Phone,
		PhotoURL:  row.PhotoURL,
		Subjects:  row.Subjects,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

const teacherColumns = "id, name, email, age, sex, phone, photo_url, subjects, created_at, updated_at"

func (repo *teacherRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedTeachers ...teacher.Teacher) error {
	if email == "" {
		return nil
	}
	query := "SELECT id FROM teachers WHERE email = $1"
	args := []interface{}{email}
	if len(excludedTeachers) > 0 {
		ids := make([]string, 0, len(excludedTeachers))
		for _, t := range excludedTeachers {
			ids = append(ids, t.ID)
		}
		query += " AND NOT (id = ANY($2))"
		args = append(args, pq.StringArray(ids))
	}

	var id string
	err := repo.db.GetContext(ctx, &id, query, args...)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking teacher uniqueness")
	}
	return teacher.ErrEmailExists
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	t.ID = uuid.New().String()
	var row teacherRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO teachers (id, name, email, age, sex, phone, subjects, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+teacherColumns,
		t.ID, t.Name, t.Email, t.Age, t.Sex, t.Phone, pq.StringArray(t.Subjects), t.CreatedAt,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return row.teacher(), nil
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	var rows []teacherRow
	err := repo.db.SelectContext(ctx, &rows, "SELECT "+teacherColumns+" FROM teachers ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}

	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.teacher())
	}
	return teachers, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id string) (teacher.Teacher, error) {
	var row teacherRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+teacherColumns+" FROM teachers WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "fetching teacher")
	}
	return row.teacher(), nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	var row teacherRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE teachers SET
			name       = COALESCE(NULLIF($2, ''), name),
			email      = COALESCE(NULLIF($3, ''), email),
			age        = CASE WHEN $4 = 0 THEN age ELSE $4 END,
			sex        = COALESCE(NULLIF($5, ''), sex),
			phone      = COALESCE(NULLIF($6, ''), phone),
			subjects   = CASE WHEN $7::text[] IS NULL THEN subjects ELSE $7 END,
			updated_at = $8
		WHERE id = $1
		RETURNING `+teacherColumns,
		t.ID, t.Name, t.Email, t.Age, t.Sex, t.Phone, subjectsArg(t.Subjects), t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return row.teacher(), nil
}

func (repo *teacherRepository) SetTeacherPhotoURL(ctx context.Context, id string, photoURL null.String) (teacher.Teacher, error) {
	var row teacherRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE teachers SET photo_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+teacherColumns,
		id, photoURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "committing photo reference")
	}
	return row.teacher(), nil
}

func (repo *teacherRepository) DeleteTeachersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, "DELETE FROM teachers WHERE id = ANY($1)", pq.StringArray(ids))
	return errors.Wrap(err, "deleting teachers")
}

// subjectsArg keeps a nil slice NULL on the wire so updates can tell
// "leave unchanged" apart from "clear the list".
func subjectsArg(subjects []string) interface{} {
	if subjects == nil {
		return nil
	}
	return pq.StringArray(subjects)
}
