package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrNotFound     = errors.New("schedule not found")
	errYearRequired = errors.New("an academic year must be provided")
)

// ColorTransparent is the sentinel for an unpainted cell; the eraser tool
// sets it back and never touches the legend.
const ColorTransparent = "transparent"

// SubjectGeneral is the subject the master grid addresses its cells under.
const SubjectGeneral = "General"

var (
	// Palette is the fixed set of color tokens cells may be painted with.
	Palette = []string{
		"#f44336", "#e91e63", "#9c27b0", "#673ab7",
		"#3f51b5", "#2196f3", "#03a9f4", "#00bcd4",
		"#009688", "#4caf50", "#8bc34a", "#cddc39",
		"#ffeb3b", "#ffc107", "#ff9800", "#ff5722",
	}

	// Weekdays is the fixed weekday sequence of the master grid.
	Weekdays = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes"}

	// Periods is the fixed class-period sequence of the master grid.
	Periods = []int{1, 2, 3, 4, 5, 6, 7}
)

// Cell is the smallest addressable unit of the grid: free text (≤4 display
// chars by convention, not enforced here) plus a color annotation.
// Edits always replace the whole value; there are no partial patches.
type Cell struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// DefaultCell is what an untouched cell looks like.
var DefaultCell = Cell{Text: "", Color: ColorTransparent}

func (c Cell) IsDefault() bool {
	return c == DefaultCell
}

// Cells maps cell keys to cells for a single teacher. Absent keys mean
// DefaultCell; the mapping is intentionally sparse.
type Cells map[CellKey]Cell

// Lookup is the total lookup function: it returns DefaultCell for absent keys.
func (c Cells) Lookup(key CellKey) Cell {
	if cell, ok := c[key]; ok {
		return cell
	}
	return DefaultCell
}

// Grid maps teacher names to their cells.
type Grid map[string]Cells

// Legend maps a color token to its human-readable meaning.
// A color may be registered with an empty meaning (painted before typed).
type Legend map[string]string

// Document is the schedule for one academic year. Year is its identity;
// lookups and upserts are keyed on it exclusively.
type Document struct {
	Year      string      `json:"year"`
	Grid      Grid        `json:"data"`
	Legend    Legend      `json:"legend"`
	PDFURL    null.String `json:"pdfUrl"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at"` // UTC
}

// DefaultDocument is the valid "nothing configured yet" state returned for
// unknown years.
func DefaultDocument(year string) Document {
	return Document{Year: year, Grid: Grid{}, Legend: Legend{}}
}

// Summary is a listing entry; grid/legend payloads are omitted for bandwidth.
type Summary struct {
	Year   string      `json:"year"`
	PDFURL null.String `json:"pdfUrl"`
}

// Grid and Legend are persisted as JSONB.

func (g Grid) Value() (driver.Value, error) {
	return json.Marshal(g)
}

func (g *Grid) Scan(src interface{}) error {
	return scanJSON(src, g)
}

func (l Legend) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *Legend) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	}
	return errors.New("incompatible type for JSON column")
}
