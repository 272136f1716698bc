package schedule

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestParseCellKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    CellKey
		wantErr bool
	}{
		{name: "simple", key: "General-Lunes-1", want: CellKey{Subject: "General", Weekday: "Lunes", Period: 1}},
		{name: "dash in subject", key: "Mate-Avanzada-Martes-3", want: CellKey{Subject: "Mate-Avanzada", Weekday: "Martes", Period: 3}},
		{name: "several dashes in subject", key: "A-B-C-Viernes-7", want: CellKey{Subject: "A-B-C", Weekday: "Viernes", Period: 7}},
		{name: "no dash", key: "General", wantErr: true},
		{name: "single dash", key: "Lunes-1", wantErr: true},
		{name: "non-numeric period", key: "General-Lunes-x", wantErr: true},
		{name: "empty", key: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCellKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCellKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseCellKey(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestCellKeyStringRoundTrip(t *testing.T) {
	keys := []CellKey{
		{Subject: "General", Weekday: "Lunes", Period: 1},
		{Subject: "Mate-Avanzada", Weekday: "Miércoles", Period: 5},
	}
	for _, key := range keys {
		got, err := ParseCellKey(key.String())
		if err != nil {
			t.Fatalf("ParseCellKey(%q) failed: %v", key.String(), err)
		}
		if got != key {
			t.Errorf("round trip of %+v = %+v", key, got)
		}
	}
}

func TestCellsJSONLegacyKeys(t *testing.T) {
	cells := Cells{
		{Subject: "Mate-Avanzada", Weekday: "Martes", Period: 3}: {Text: "1A", Color: "#f44336"},
	}

	data, err := json.Marshal(cells)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if !strings.Contains(string(data), `"Mate-Avanzada-Martes-3"`) {
		t.Errorf("marshalled cells missing legacy key: %s", data)
	}

	var got Cells
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if !reflect.DeepEqual(got, cells) {
		t.Errorf("round trip = %+v, want %+v", got, cells)
	}
}

func TestExpand(t *testing.T) {
	painted := Cell{Text: "1A", Color: "#f44336"}
	grid := Grid{
		"Ana":   {CellKey{Subject: SubjectGeneral, Weekday: "Lunes", Period: 1}: painted},
		"Stale": {CellKey{Subject: SubjectGeneral, Weekday: "Lunes", Period: 1}: painted},
	}

	m := Expand(grid, []string{"Ana", "Benito"}, Weekdays, Periods)

	if len(m.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(m.Rows))
	}
	for _, row := range m.Rows {
		if len(row.Cells) != len(Weekdays) {
			t.Fatalf("row %s has %d weekday columns, want %d", row.Teacher, len(row.Cells), len(Weekdays))
		}
		for _, day := range row.Cells {
			if len(day) != len(Periods) {
				t.Fatalf("row %s has %d period cells, want %d", row.Teacher, len(day), len(Periods))
			}
		}
	}

	if got := m.Rows[0].Cells[0][0]; got != painted {
		t.Errorf("Ana Lunes/1 = %+v, want %+v", got, painted)
	}
	// teacher absent from the grid expands to an all-default row
	for d := range m.Rows[1].Cells {
		for p, cell := range m.Rows[1].Cells[d] {
			if !cell.IsDefault() {
				t.Errorf("Benito [%d][%d] = %+v, want default", d, p, cell)
			}
		}
	}
	// grid teachers not in the name list are excluded, not purged
	for _, row := range m.Rows {
		if row.Teacher == "Stale" {
			t.Error("excluded teacher present in matrix")
		}
	}
}

func TestCompactExpandRoundTrip(t *testing.T) {
	grid := Grid{
		"Ana": {
			CellKey{Subject: SubjectGeneral, Weekday: "Lunes", Period: 1}:     {Text: "1A", Color: "#f44336"},
			CellKey{Subject: SubjectGeneral, Weekday: "Viernes", Period: 7}:   {Text: "", Color: "#2196f3"},
			CellKey{Subject: SubjectGeneral, Weekday: "Miércoles", Period: 4}: {Text: "2B", Color: ColorTransparent},
		},
		"Benito": {
			CellKey{Subject: SubjectGeneral, Weekday: "Martes", Period: 2}: {Text: "3C", Color: "#4caf50"},
		},
	}

	got := Compact(Expand(grid, []string{"Ana", "Benito"}, Weekdays, Periods))
	if !reflect.DeepEqual(got, grid) {
		t.Errorf("Compact(Expand()) = %+v, want %+v", got, grid)
	}
}

func TestCompactOmitsDefaults(t *testing.T) {
	m := Expand(Grid{}, []string{"Ana", "Benito"}, Weekdays, Periods)
	if got := Compact(m); len(got) != 0 {
		t.Errorf("Compact(all-default matrix) = %+v, want empty", got)
	}

	// an explicitly stored default cell reads back fine but compacts away
	grid := Grid{"Ana": {CellKey{Subject: SubjectGeneral, Weekday: "Lunes", Period: 1}: DefaultCell}}
	got := Compact(Expand(grid, []string{"Ana"}, Weekdays, Periods))
	if len(got) != 0 {
		t.Errorf("Compact() kept explicit default: %+v", got)
	}
}
