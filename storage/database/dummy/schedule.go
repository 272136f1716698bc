package dummydb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/escuela9/portal/core/schedule"
)

type scheduleRepository struct {
	db *scheduleTable
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.schedule}
}

func (repo *scheduleRepository) GetSchedule(ctx context.Context, year string) (schedule.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if doc, ok := repo.db.table[year]; ok {
		return copyDocument(*doc), nil
	}
	return schedule.Document{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) UpsertSchedule(ctx context.Context, doc schedule.Document) (schedule.Document, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.table[doc.Year]; ok {
		orig.Grid = doc.Grid
		orig.Legend = doc.Legend
		orig.UpdatedAt = doc.UpdatedAt
		return copyDocument(*orig), nil
	}
	doc.CreatedAt = doc.UpdatedAt
	repo.db.table[doc.Year] = &doc
	return copyDocument(doc), nil
}

func (repo *scheduleRepository) SetSchedulePDFURL(ctx context.Context, year string, pdfURL null.String) (schedule.Document, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[year]
	if !ok {
		doc := schedule.DefaultDocument(year)
		orig = &doc
		repo.db.table[year] = orig
	}
	orig.PDFURL = pdfURL
	return copyDocument(*orig), nil
}

func (repo *scheduleRepository) QuerySchedules(ctx context.Context) ([]schedule.Summary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	summaries := make([]schedule.Summary, 0, len(repo.db.table))
	for _, doc := range repo.db.table {
		summaries = append(summaries, schedule.Summary{Year: doc.Year, PDFURL: doc.PDFURL})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Year > summaries[j].Year })
	return summaries, nil
}

func (repo *scheduleRepository) DeleteSchedule(ctx context.Context, year string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[year]; !ok {
		return schedule.ErrNotFound
	}
	delete(repo.db.table, year)
	return nil
}

// copyDocument deep-copies the maps so callers cannot mutate stored state.
func copyDocument(doc schedule.Document) schedule.Document {
	grid := make(schedule.Grid, len(doc.Grid))
	for name, cells := range doc.Grid {
		copied := make(schedule.Cells, len(cells))
		for key, cell := range cells {
			copied[key] = cell
		}
		grid[name] = copied
	}
	legend := make(schedule.Legend, len(doc.Legend))
	for color, meaning := range doc.Legend {
		legend[color] = meaning
	}
	doc.Grid = grid
	doc.Legend = legend
	return doc
}
