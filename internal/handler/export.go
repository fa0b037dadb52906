package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "destination", "date", "time", "total_seats", "available_seats",
	"cost_per_person", "trip_type", "creator_id", "participants",
}

// ExportRow is one trip flattened for spreadsheets.
type ExportRow struct {
	TripID         string   `json:"trip_id"`
	Destination    string   `json:"destination"`
	Date           string   `json:"date,omitempty"`
	Time           string   `json:"time,omitempty"`
	TotalSeats     int      `json:"total_seats"`
	AvailableSeats int      `json:"available_seats"`
	CostPerPerson  float64  `json:"cost_per_person"`
	TripType       string   `json:"trip_type,omitempty"`
	CreatorID      string   `json:"creator_id,omitempty"`
	Participants   []string `json:"participants"`
}

// GetExport handles GET /api/export.
// It returns every trip as a flat row. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	trips, err := s.Trips.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rows := make([]ExportRow, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, tripToExportRow(t))
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, list(rows))
	case "csv":
		writeCSV(w, rows)
	default:
		badRequest(w, "format must be json or csv")
	}
}

// writeCSV encodes rows as CSV. Participants within a row are pipe-separated
// ("|") to keep each trip on a single CSV line.
func writeCSV(w http.ResponseWriter, rows []ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(exportRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

func tripToExportRow(t domain.Trip) ExportRow {
	participants := t.Participants
	if participants == nil {
		participants = []string{}
	}
	return ExportRow{
		TripID:         t.ID,
		Destination:    t.Destination,
		Date:           t.Date,
		Time:           t.Time,
		TotalSeats:     t.TotalSeats,
		AvailableSeats: t.AvailableSeats,
		CostPerPerson:  t.CostPerPerson,
		TripType:       t.TripType,
		CreatorID:      t.CreatorID,
		Participants:   participants,
	}
}

func exportRowToCSVRecord(r ExportRow) []string {
	return []string{
		r.TripID,
		r.Destination,
		r.Date,
		r.Time,
		strconv.Itoa(r.TotalSeats),
		strconv.Itoa(r.AvailableSeats),
		strconv.FormatFloat(r.CostPerPerson, 'f', 2, 64),
		r.TripType,
		r.CreatorID,
		strings.Join(r.Participants, "|"),
	}
}
