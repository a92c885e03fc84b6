package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"pothole-service/models"
)

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	expected := "seq,created_at,status,severity,latitude,longitude,address,description,picture_url,author_id\n" +
		NoReportsMessage + "\n"
	if buf.String() != expected {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	lat, lon := 47.36, 8.5312345678
	sv := models.SeverityHigh
	addr := "Bahnhofstrasse 1, Zürich"
	reports := []models.Report{
		{
			Seq:         3,
			Description: "deep, wide",
			Severity:    &sv,
			Status:      models.StatusPending,
			Latitude:    &lat,
			Longitude:   &lon,
			Address:     &addr,
			AuthorID:    "alice",
			CreatedAt:   time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC),
		},
		{Seq: 1, Status: models.StatusResolved, AuthorID: "bob"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reports); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	first := rows[1]
	expected := []string{"3", "2024-04-01T09:30:00Z", "PENDING", "HIGH", "47.3600000", "8.5312346", addr, "deep, wide", "", "alice"}
	for i := range expected {
		if first[i] != expected[i] {
			t.Errorf("column %s: expected %q, got %q", Header[i], expected[i], first[i])
		}
	}
	if rows[2][3] != "" || rows[2][4] != "" || rows[2][6] != "" {
		t.Errorf("expected empty optional columns, got %v", rows[2])
	}
}

func TestFormatCoordinate(t *testing.T) {
	testCases := []struct {
		in       float64
		expected string
	}{
		{0, "0.0000000"},
		{-33.8688, "-33.8688000"},
		{179.99999999, "180.0000000"},
	}
	for _, tc := range testCases {
		if got := FormatCoordinate(tc.in); got != tc.expected {
			t.Errorf("FormatCoordinate(%v): expected %s, got %s", tc.in, tc.expected, got)
		}
	}
}

func TestSafeCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"deep hole", "deep hole"},
		{"=HYPERLINK(\"http://evil\")", "'=HYPERLINK(\"http://evil\")"},
		{"+1+2", "'+1+2"},
		{"-2+3", "'-2+3"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"\t=1", "'\t=1"},
		{"\r=1", "'\r=1"},
		{"a=b", "a=b"},
	}
	for _, tt := range tests {
		if got := safeCell(tt.in); got != tt.want {
			t.Errorf("safeCell(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestWriteCSVNeutralisesFormulas(t *testing.T) {
	lat, lon := -33.9, -18.4
	addr := "=cmd|' /C calc'!A0"
	reports := []models.Report{{
		Seq:         7,
		Description: "=1+1",
		Status:      models.StatusPending,
		Latitude:    &lat,
		Longitude:   &lon,
		Address:     &addr,
		PictureURL:  "@img",
		AuthorID:    "+alice",
	}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reports); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	row := rows[1]
	if row[4] != "-33.9000000" || row[5] != "-18.4000000" {
		t.Errorf("coordinates must stay numeric, got %q %q", row[4], row[5])
	}
	for _, col := range []int{6, 7, 8, 9} {
		if row[col] == "" || row[col][0] != '\'' {
			t.Errorf("column %s not neutralised: %q", Header[col], row[col])
		}
	}
}
