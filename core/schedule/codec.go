package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CellKey addresses a cell as the structured triple (subject, weekday, period).
// The wire form is the legacy "<subject>-<weekday>-<period>" string; parsing
// splits from the RIGHT so subjects containing '-' survive the round trip.
type CellKey struct {
	Subject string
	Weekday string
	Period  int
}

func (k CellKey) String() string {
	return fmt.Sprintf("%s-%s-%d", k.Subject, k.Weekday, k.Period)
}

// ParseCellKey decodes the legacy string form of a cell key.
func ParseCellKey(s string) (CellKey, error) {
	i := strings.LastIndex(s, "-")
	if i < 0 {
		return CellKey{}, errors.Errorf("malformed cell key %q", s)
	}
	period, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return CellKey{}, errors.Wrapf(err, "malformed period in cell key %q", s)
	}

	rest := s[:i]
	j := strings.LastIndex(rest, "-")
	if j < 0 {
		return CellKey{}, errors.Errorf("malformed cell key %q", s)
	}
	return CellKey{Subject: rest[:j], Weekday: rest[j+1:], Period: period}, nil
}

// MarshalText/UnmarshalText let Cells be JSON-encoded with legacy string keys.

func (k CellKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CellKey) UnmarshalText(text []byte) error {
	key, err := ParseCellKey(string(text))
	if err != nil {
		return err
	}
	*k = key
	return nil
}

type (
	// Matrix is the dense presentation form of a Grid: one row per teacher
	// (order preserved), each holding weekday × period cells.
	Matrix struct {
		Weekdays []string
		Periods  []int
		Rows     []Row
	}

	Row struct {
		Teacher string
		Subject string
		// Cells is indexed [weekday][period] following Matrix.Weekdays/Periods.
		Cells [][]Cell
	}
)

// Expand converts a sparse grid into the dense matrix the presentation layer
// needs. It is pure and total: teachers absent from the grid expand to
// all-default rows, and grid teachers not in teacherNames are excluded
// (stale data is tolerated, not purged).
func Expand(grid Grid, teacherNames, weekdays []string, periods []int) Matrix {
	m := Matrix{
		Weekdays: weekdays,
		Periods:  periods,
		Rows:     make([]Row, 0, len(teacherNames)),
	}
	for _, name := range teacherNames {
		cells := grid[name] // nil is fine; Lookup is total
		row := Row{
			Teacher: name,
			Subject: SubjectGeneral,
			Cells:   make([][]Cell, len(weekdays)),
		}
		for d, day := range weekdays {
			row.Cells[d] = make([]Cell, len(periods))
			for p, period := range periods {
				row.Cells[d][p] = cells.Lookup(CellKey{Subject: row.Subject, Weekday: day, Period: period})
			}
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

// Compact is the inverse of Expand. Default cells are omitted to keep
// storage sparse; explicitly stored defaults remain equally readable by
// Expand.
func Compact(m Matrix) Grid {
	grid := Grid{}
	for _, row := range m.Rows {
		for d, day := range m.Weekdays {
			if d >= len(row.Cells) {
				break
			}
			for p, period := range m.Periods {
				if p >= len(row.Cells[d]) {
					break
				}
				cell := row.Cells[d][p]
				if cell.IsDefault() {
					continue
				}
				if grid[row.Teacher] == nil {
					grid[row.Teacher] = Cells{}
				}
				grid[row.Teacher][CellKey{Subject: row.Subject, Weekday: day, Period: period}] = cell
			}
		}
	}
	return grid
}
