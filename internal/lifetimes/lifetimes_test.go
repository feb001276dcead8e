package lifetimes

import (
	"strings"
	"testing"
	"time"
)

func TestReadCSVAndDerive(t *testing.T) {
	input := strings.Join([]string{
		"asset_identifier,in_service_date,retirement_date",
		"A-001,2010-01-01,2020-01-01",
		"A-002,2015-06-01,",            // still in service
		"A-003,2018-01-01,2017-01-01",  // negative lifetime, dropped
		"A-004,2012-03-15,2019-09-15",
	}, "\n")

	records, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[1].Retired {
		t.Fatalf("expected A-002 still in service")
	}

	lifetimes, err := FromRecords(records)
	if err != nil {
		t.Fatalf("from records: %v", err)
	}
	if len(lifetimes) != 2 {
		t.Fatalf("expected 2 usable lifetimes, got %d", len(lifetimes))
	}
	// A-001 served almost exactly 10 years.
	if lifetimes[0] < 9.99 || lifetimes[0] > 10.01 {
		t.Fatalf("unexpected lifetime %v", lifetimes[0])
	}

	s := Summarize(lifetimes)
	if s.Count != 2 || s.Min <= 0 || s.Max < s.Min || s.Mean < s.Min || s.Mean > s.Max {
		t.Fatalf("bad summary: %+v", s)
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("asset_identifier,installed\nA,2020-01-01"))
	if err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestReadCSVBadDate(t *testing.T) {
	input := "asset_identifier,in_service_date,retirement_date\nA,01/02/2020,2021-01-01"
	if _, err := ReadCSV(strings.NewReader(input)); err == nil {
		t.Fatalf("expected date parse error")
	}
}

func TestFromRecordsAllFiltered(t *testing.T) {
	records := []Record{
		{AssetID: "A", InServiceDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{
			AssetID:        "B",
			InServiceDate:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			RetirementDate: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
			Retired:        true,
		},
	}
	if _, err := FromRecords(records); err != ErrNoValidData {
		t.Fatalf("expected ErrNoValidData, got %v", err)
	}
}
