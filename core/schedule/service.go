package schedule

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/escuela9/portal/core"
)

var NowFunc = time.Now // mockable

const artifactDir = "pdfHorarios"

type (
	Repository interface {
		GetSchedule(ctx context.Context, year string) (Document, error)
		// UpsertSchedule replaces grid and legend wholesale for the document's
		// year, creating the document if absent. PDFURL is left untouched.
		UpsertSchedule(ctx context.Context, doc Document) (Document, error)
		// SetSchedulePDFURL commits the artifact reference, creating the
		// document if absent.
		SetSchedulePDFURL(ctx context.Context, year string, pdfURL null.String) (Document, error)
		QuerySchedules(ctx context.Context) ([]Summary, error) // year DESC
		DeleteSchedule(ctx context.Context, year string) error
	}

	// Upload carries an incoming PDF artifact.
	Upload struct {
		Filename string
		Content  io.Reader
	}

	Service struct {
		repo  Repository
		files core.FileStore
		conf  *core.Config
	}
)

func NewService(repo Repository, files core.FileStore, conf *core.Config) *Service {
	return &Service{repo: repo, files: files, conf: conf}
}

// Upsert finds the document for the year, creating it if absent, and
// replaces grid and legend wholesale. Repeating the call with identical
// input yields the same stored state, never a duplicate.
func (svc *Service) Upsert(ctx context.Context, year string, grid Grid, legend Legend) (Document, error) {
	year = core.CleanString(year)
	if year == "" {
		return Document{}, core.NewValidationError(errYearRequired, core.FieldError{Field: "year", Error: errYearRequired.Error()})
	}
	if grid == nil {
		grid = Grid{}
	}
	legend = registerPaintedColors(grid, legend)

	doc := Document{
		Year:      year,
		Grid:      grid,
		Legend:    legend,
		UpdatedAt: NowFunc().UTC(),
	}
	doc, err := svc.repo.UpsertSchedule(ctx, doc)
	if err != nil {
		return Document{}, errors.Wrap(err, "upserting schedule")
	}
	return doc, nil
}

// registerPaintedColors enforces the legend soft-invariant on the write path:
// every color referenced by a painted cell gets a legend entry, with an
// empty meaning until the admin types one.
func registerPaintedColors(grid Grid, legend Legend) Legend {
	if legend == nil {
		legend = Legend{}
	}
	for _, cells := range grid {
		for _, cell := range cells {
			if cell.Color == ColorTransparent || cell.Color == "" {
				continue
			}
			if _, ok := legend[cell.Color]; !ok {
				legend[cell.Color] = ""
			}
		}
	}
	return legend
}

// AttachPDF stores the uploaded artifact under a year- and timestamp-
// qualified name and commits it as the document's artifact, creating the
// document if absent. Ordering is: write new artifact → commit reference →
// delete old artifact; the document never references a deleted file, at the
// cost of a possible orphaned file if we crash mid-way.
func (svc *Service) AttachPDF(ctx context.Context, year string, pdf Upload) (Document, error) {
	year = core.CleanString(year)
	if year == "" {
		return Document{}, core.NewValidationError(errYearRequired, core.FieldError{Field: "year", Error: errYearRequired.Error()})
	}

	old, err := svc.repo.GetSchedule(ctx, year)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return Document{}, errors.Wrap(err, "fetching schedule")
	}

	ext := filepath.Ext(pdf.Filename)
	if ext == "" {
		ext = ".pdf"
	}
	name := filepath.Join(artifactDir, fmt.Sprintf("horario_%s_%d%s", year, NowFunc().UnixNano()/int64(time.Millisecond), ext))

	path, err := svc.files.Save(ctx, name, pdf.Content)
	if err != nil {
		return Document{}, errors.Wrap(err, "storing schedule artifact")
	}

	doc, err := svc.repo.SetSchedulePDFURL(ctx, year, null.StringFrom(path))
	if err != nil {
		return Document{}, errors.Wrap(err, "committing artifact reference")
	}

	if old.PDFURL.Valid && old.PDFURL.String != path {
		// reference already moved; an orphan here is acceptable
		_ = svc.files.Delete(ctx, old.PDFURL.String)
	}
	return doc, nil
}

// Save is the combined call backing the save endpoint: grid+legend upsert
// plus an optional artifact in one logical request. A failure storing the
// PDF after the upsert is reported to the caller as an error.
func (svc *Service) Save(ctx context.Context, year string, grid Grid, legend Legend, pdf *Upload) (Document, error) {
	doc, err := svc.Upsert(ctx, year, grid, legend)
	if err != nil {
		return Document{}, err
	}
	if pdf != nil {
		if doc, err = svc.AttachPDF(ctx, year, *pdf); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}

// Get returns the stored document; an unknown year is not an error but the
// valid "nothing configured yet" default.
func (svc *Service) Get(ctx context.Context, year string) (Document, error) {
	doc, err := svc.repo.GetSchedule(ctx, year)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return DefaultDocument(year), nil
		}
		return Document{}, errors.Wrap(err, "fetching schedule")
	}
	return doc, nil
}

// List returns summaries for all years, most recent academic year first.
func (svc *Service) List(ctx context.Context) ([]Summary, error) {
	summaries, err := svc.repo.QuerySchedules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying schedules")
	}
	return summaries, nil
}

// Delete removes the document and its artifact as a single administrative
// action. ErrNotFound if no document exists for the year.
func (svc *Service) Delete(ctx context.Context, year string) error {
	doc, err := svc.repo.GetSchedule(ctx, year)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteSchedule(ctx, year); err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	if doc.PDFURL.Valid {
		if err = svc.files.Delete(ctx, doc.PDFURL.String); err != nil {
			return errors.Wrap(err, "deleting schedule artifact")
		}
	}
	return nil
}

// Export renders the stored grid and legend into a PDF artifact and attaches
// it to the document through the same replace-and-cleanup path as an upload.
// Any render failure aborts the export; no partial artifact is stored.
func (svc *Service) Export(ctx context.Context, year string, teacherNames []string) (Document, error) {
	doc, err := svc.Get(ctx, year)
	if err != nil {
		return Document{}, err
	}

	content, err := renderPDF(doc, teacherNames, Weekdays, Periods, svc.conf.SchoolName)
	if err != nil {
		return Document{}, errors.Wrap(err, "rendering schedule PDF")
	}

	return svc.AttachPDF(ctx, year, Upload{
		Filename: fmt.Sprintf("Horario_%s.pdf", year),
		Content:  content,
	})
}
