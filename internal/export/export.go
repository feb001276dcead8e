// Package export turns generated curve samples into downloadable CSV and
// spreadsheet files. It builds on weibull.Generate so exported values always
// match what was plotted.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"lifecurve/internal/weibull"
)

// Kind selects which functions are exported.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindCDF  Kind = "cdf"
	KindBoth Kind = "both"
)

// DefaultPoints is the export sample length, denser than the on-screen plot.
const DefaultPoints = 1000

const (
	colX   = "X_Value"
	colPDF = "Probability_Density"
	colCDF = "Cumulative_Probability"
)

// Table is a column-ordered export payload.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// CurveData samples the requested functions on the shared x grid. For
// KindBoth the PDF truncation point fixes the grid so both columns line up
// row by row.
func CurveData(shape, scale float64, kind Kind, numPoints int) (Table, error) {
	if numPoints <= 0 {
		numPoints = DefaultPoints
	}
	switch kind {
	case KindPDF:
		c, err := weibull.Generate(shape, scale, weibull.CurvePDF, numPoints)
		if err != nil {
			return Table{}, err
		}
		return twoColumn(colPDF, c), nil
	case KindCDF:
		c, err := weibull.Generate(shape, scale, weibull.CurveCDF, numPoints)
		if err != nil {
			return Table{}, err
		}
		return twoColumn(colCDF, c), nil
	case KindBoth:
		pdf, err := weibull.Generate(shape, scale, weibull.CurvePDF, numPoints)
		if err != nil {
			return Table{}, err
		}
		t := Table{Columns: []string{colX, colPDF, colCDF}}
		for i, x := range pdf.X {
			t.Rows = append(t.Rows, []float64{x, pdf.Y[i], weibull.CDF(x, shape, scale)})
		}
		return t, nil
	}
	return Table{}, fmt.Errorf("%w: unknown export kind %q (want pdf, cdf or both)", weibull.ErrValidation, kind)
}

func twoColumn(yName string, c weibull.Curve) Table {
	t := Table{Columns: []string{colX, yName}}
	for i, x := range c.X {
		t.Rows = append(t.Rows, []float64{x, c.Y[i]})
	}
	return t
}

// CSV renders the table as UTF-8 CSV bytes. Cells where the function is
// unbounded (the pdf at x=0 for shape < 1) are left empty.
func CSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				record[i] = ""
				continue
			}
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Excel renders the table as an xlsx workbook. Unbounded cells stay blank,
// matching the CSV rendering.
func Excel(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"
	for i, name := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename builds a timestamped download name, e.g.
// weibull_curve_20240101_103000.csv.
func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), ext)
}
