package schedule

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

// layout (mm, A4 landscape)
const (
	pageMargin   = 10.0
	teacherColW  = 42.0
	subjectColW  = 28.0
	rowH         = 10.0
	headerH      = 7.0
	legendSwatch = 5.0
)

// renderPDF rasterizes the document in a fixed order: title block, grid
// (teacher rows × weekday columns, each holding the period sub-cells),
// legend block. It reproduces exactly the data passed in; any failure
// aborts the whole render.
func renderPDF(doc Document, teacherNames, weekdays []string, periods []int, schoolName string) (*bytes.Buffer, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	usableW := pageW - 2*pageMargin
	dayColW := (usableW - teacherColW - subjectColW) / float64(len(weekdays))
	periodW := dayColW / float64(len(periods))

	// title block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(usableW, 6, tr(schoolName), "", 1, "C", false, 0, "")
	pdf.CellFormat(usableW, 6, tr("HORARIO GENERAL "+doc.Year), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// grid header
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(teacherColW, headerH, tr("Profesor"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(subjectColW, headerH, tr("Asignaturas"), "1", 0, "C", true, 0, "")
	for _, day := range weekdays {
		pdf.CellFormat(dayColW, headerH, tr(day), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// grid rows
	matrix := Expand(doc.Grid, teacherNames, weekdays, periods)
	pdf.SetFont("Helvetica", "", 6)
	for _, row := range matrix.Rows {
		x, y := pdf.GetXY()
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(teacherColW, rowH, tr(row.Teacher), "1", 0, "L", false, 0, "")
		pdf.CellFormat(subjectColW, rowH, tr(row.Subject), "1", 0, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 6)
		for d := range weekdays {
			for p, period := range periods {
				cell := row.Cells[d][p]
				cx := x + teacherColW + subjectColW + float64(d)*dayColW + float64(p)*periodW

				r, g, b, err := colorRGB(cell.Color)
				if err != nil {
					return nil, err
				}
				pdf.SetFillColor(r, g, b)
				pdf.Rect(cx, y, periodW, rowH, "FD")

				pdf.SetXY(cx, y)
				pdf.CellFormat(periodW, rowH/2, strconv.Itoa(period), "", 0, "C", false, 0, "")
				pdf.SetXY(cx, y+rowH/2)
				pdf.CellFormat(periodW, rowH/2, tr(cell.Text), "", 0, "C", false, 0, "")
			}
		}
		pdf.SetXY(x, y+rowH)
	}

	// legend block; tokens sorted for a stable render
	if len(doc.Legend) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(usableW, 5, "Leyenda:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)

		colors := make([]string, 0, len(doc.Legend))
		for color := range doc.Legend {
			colors = append(colors, color)
		}
		sort.Strings(colors)

		for _, color := range colors {
			r, g, b, err := colorRGB(color)
			if err != nil {
				return nil, err
			}
			x, y := pdf.GetXY()
			pdf.SetFillColor(r, g, b)
			pdf.Rect(x, y, legendSwatch, legendSwatch, "FD")
			pdf.SetXY(x+legendSwatch+2, y)
			pdf.CellFormat(usableW-legendSwatch-2, legendSwatch, tr(doc.Legend[color]), "", 1, "L", false, 0, "")
			pdf.SetY(y + legendSwatch + 2)
		}
	}

	if pdf.Err() {
		return nil, errors.Wrap(pdf.Error(), "rasterizing schedule")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing PDF")
	}
	return &buf, nil
}

// colorRGB decodes a #rrggbb token; transparent cells render white.
func colorRGB(color string) (int, int, int, error) {
	if color == ColorTransparent || color == "" {
		return 255, 255, 255, nil
	}
	if len(color) != 7 || color[0] != '#' {
		return 0, 0, 0, errors.Errorf("invalid color token %q", color)
	}
	v, err := strconv.ParseUint(color[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, errors.Wrapf(err, "invalid color token %q", color)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), nil
}
