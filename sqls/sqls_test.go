package sqls

import (
	"strings"
	"testing"
)

func TestStationTableName(t *testing.T) {
	tests := []struct {
		station  string
		timebase string
		expected string
	}{
		{"4", "1", "S004T01"},
		{"12", "10", "S012T10"},
		{"123", "05", "S123T05"},
	}
	for _, tc := range tests {
		table, err := StationTableName(tc.station, tc.timebase)
		if err != nil {
			t.Fatalf("StationTableName(%q, %q): %v", tc.station, tc.timebase, err)
		}
		if table != tc.expected {
			t.Errorf("StationTableName(%q, %q) = %q, want %q", tc.station, tc.timebase, table, tc.expected)
		}
	}
}

func TestStationTableNameRejectsNonNumeric(t *testing.T) {
	invalid := [][2]string{
		{"4; DROP TABLE em_job", "1"},
		{"4", "x"},
		{"", "1"},
		{"4", ""},
	}
	for _, pair := range invalid {
		if _, err := StationTableName(pair[0], pair[1]); err == nil {
			t.Errorf("StationTableName(%q, %q) should fail", pair[0], pair[1])
		}
	}
}

func TestValueColumnName(t *testing.T) {
	column, err := ValueColumnName(2)
	if err != nil {
		t.Fatal(err)
	}
	if column != "Value2" {
		t.Errorf("got %q, want Value2", column)
	}

	if _, err := ValueColumnName(0); err == nil {
		t.Error("value number 0 should fail")
	}
}

func TestWindowAveragesQueryBindsValues(t *testing.T) {
	query := GetSQLSelectWindowAverages("S004T01", "Value2")

	if !strings.Contains(query, "@tick") || !strings.Contains(query, "@sentinel") {
		t.Error("tick and sentinel must be bind parameters")
	}
	if !strings.Contains(query, "DATEADD(hour, -1, @tick)") ||
		!strings.Contains(query, "DATEADD(hour, -3, @tick)") ||
		!strings.Contains(query, "DATEADD(hour, -4, @tick)") {
		t.Error("query must cover the 1h, 3h and 4h trailing windows")
	}
	if strings.Contains(query, "-9999") {
		t.Error("sentinel must not be interpolated into the query text")
	}
}

func TestRollingRowsQueryRange(t *testing.T) {
	query := GetSQLSelectRollingRows()

	if !strings.Contains(query, "date_time > @fromTime") || !strings.Contains(query, "date_time <= @toTime") {
		t.Error("evaluation range must be (fromTime, toTime]")
	}
	if !strings.Contains(query, "ORDER BY date_time ASC") {
		t.Error("rows must come back in chronological order")
	}
}
