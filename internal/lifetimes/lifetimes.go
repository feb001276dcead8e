// Package lifetimes derives fitting-ready lifetime samples from asset
// service records. Lifetimes are measured in years; rows with a missing
// retirement date (asset still in service) or a non-positive span are
// dropped before fitting.
package lifetimes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// yearSeconds converts a duration in seconds to years, Julian-year style.
const yearSeconds = 365.25 * 24 * 60 * 60

const dateLayout = "2006-01-02"

var requiredColumns = []string{"asset_identifier", "in_service_date", "retirement_date"}

// ErrNoValidData indicates no rows survived lifetime filtering.
var ErrNoValidData = errors.New("no valid lifetime data")

// Record is one asset's service interval.
type Record struct {
	AssetID        string
	InServiceDate  time.Time
	RetirementDate time.Time
	// Retired is false when the asset is still in service; such records
	// carry no lifetime.
	Retired bool
}

// Years returns the record's lifetime in years. Zero or negative values mean
// the record must be excluded from fitting.
func (r Record) Years() float64 {
	if !r.Retired {
		return 0
	}
	return r.RetirementDate.Sub(r.InServiceDate).Seconds() / yearSeconds
}

// Summary describes a derived sample for display.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean_years"`
	Min   float64 `json:"min_years"`
	Max   float64 `json:"max_years"`
}

// FromRecords extracts the strictly positive lifetimes from records. An
// empty result is ErrNoValidData: the caller has nothing to fit.
func FromRecords(records []Record) ([]float64, error) {
	var out []float64
	for _, r := range records {
		if y := r.Years(); y > 0 {
			out = append(out, y)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoValidData
	}
	return out, nil
}

// Summarize computes display statistics for a lifetime sample.
func Summarize(lifetimes []float64) Summary {
	s := Summary{Count: len(lifetimes)}
	if s.Count == 0 {
		return s
	}
	s.Min = lifetimes[0]
	s.Max = lifetimes[0]
	var sum float64
	for _, v := range lifetimes {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(s.Count)
	return s
}

// ReadCSV parses asset records from CSV. The header must contain
// asset_identifier, in_service_date and retirement_date; extra columns are
// ignored. A blank retirement_date marks an asset still in service.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("csv must contain columns: %s", strings.Join(requiredColumns, ", "))
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}
		rec := Record{AssetID: strings.TrimSpace(row[cols["asset_identifier"]])}
		rec.InServiceDate, err = time.Parse(dateLayout, strings.TrimSpace(row[cols["in_service_date"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid in_service_date: %w", line, err)
		}
		retirement := strings.TrimSpace(row[cols["retirement_date"]])
		if retirement != "" {
			rec.RetirementDate, err = time.Parse(dateLayout, retirement)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid retirement_date: %w", line, err)
			}
			rec.Retired = true
		}
		records = append(records, rec)
	}
	return records, nil
}
