package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/escuela9/portal/core/schedule"
)

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

type scheduleRow struct {
	Year      string          `db:"year"`
	Grid      schedule.Grid   `db:"grid"`
	Legend    schedule.Legend `db:"legend"`
	PDFURL    null.String     `db:"pdf_url"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (row scheduleRow) document() schedule.Document {
	doc := schedule.Document{
		Year:      row.Year,
		Grid:      row.Grid,
		Legend:    row.Legend,
		PDFURL:    row.PDFURL,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if doc.Grid == nil {
		doc.Grid = schedule.Grid{}
	}
	if doc.Legend == nil {
		doc.Legend = schedule.Legend{}
	}
	return doc
}

const scheduleColumns = "year, grid, legend, pdf_url, created_at, updated_at"

func (repo *scheduleRepository) GetSchedule(ctx context.Context, year string) (schedule.Document, error) {
	var row scheduleRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+scheduleColumns+" FROM schedules WHERE year = $1", year)
	if err != nil {
		if err == sql.ErrNoRows {
			return schedule.Document{}, schedule.ErrNotFound
		}
		return schedule.Document{}, errors.Wrap(err, "fetching schedule")
	}
	return row.document(), nil
}

func (repo *scheduleRepository) UpsertSchedule(ctx context.Context, doc schedule.Document) (schedule.Document, error) {
	var row scheduleRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO schedules (year, grid, legend, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (year) DO UPDATE
		SET grid = EXCLUDED.grid, legend = EXCLUDED.legend, updated_at = EXCLUDED.updated_at
		RETURNING `+scheduleColumns,
		doc.Year, doc.Grid, doc.Legend, doc.UpdatedAt,
	)
	if err != nil {
		return schedule.Document{}, errors.Wrap(err, "upserting schedule")
	}
	return row.document(), nil
}

func (repo *scheduleRepository) SetSchedulePDFURL(ctx context.Context, year string, pdfURL null.String) (schedule.Document, error) {
	var row scheduleRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO schedules (year, pdf_url)
		VALUES ($1, $2)
		ON CONFLICT (year) DO UPDATE
		SET pdf_url = EXCLUDED.pdf_url, updated_at = now()
		RETURNING `+scheduleColumns,
		year, pdfURL,
	)
	if err != nil {
		return schedule.Document{}, errors.Wrap(err, "committing artifact reference")
	}
	return row.document(), nil
}

func (repo *scheduleRepository) QuerySchedules(ctx context.Context) ([]schedule.Summary, error) {
	var rows []struct {
		Year   string      `db:"year"`
		PDFURL null.String `db:"pdf_url"`
	}
	err := repo.db.SelectContext(ctx, &rows, "SELECT year, pdf_url FROM schedules ORDER BY year DESC")
	if err != nil {
		return nil, errors.Wrap(err, "querying schedules")
	}

	summaries := make([]schedule.Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, schedule.Summary{Year: row.Year, PDFURL: row.PDFURL})
	}
	return summaries, nil
}

func (repo *scheduleRepository) DeleteSchedule(ctx context.Context, year string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM schedules WHERE year = $1", year)
	if err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}
