// Package export renders saved routes as spreadsheet-friendly CSV text.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
	"zust-route-service/internal/domain"
)

// Byte-order mark so spreadsheet tools detect UTF-8.
const bom = "\ufeff"

// FormatStatsCSV renders labor metrics as Label,Value rows.
func FormatStatsCSV(metrics []domain.Metric) string {
	rows := make([][]string, 0, len(metrics)+1)
	rows = append(rows, []string{"Label", "Value"})
	for _, m := range metrics {
		rows = append(rows, []string{m.Label, m.Value})
	}
	return render(rows)
}

// FormatOrderCSV renders the visiting order, positions counted from 1.
// Stops without coordinates get empty Lat and Lon cells.
func FormatOrderCSV(route domain.OrderedRoute) string {
	rows := make([][]string, 0, len(route)+1)
	rows = append(rows, []string{"Position", "Name", "Street", "Hausnummer", "Ort", "PLZ", "Lat", "Lon"})
	for i, s := range route {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.Name,
			s.Street,
			s.HouseNumber,
			s.Locality,
			s.PostalCode,
			formatCoord(s.Lat),
			formatCoord(s.Lon),
		})
	}
	return render(rows)
}

// ExportFilename names an export artifact, e.g. "Z-101_stats_2024-05-01_08-30-00.csv".
func ExportFilename(zoneID, kind string, at time.Time) string {
	return zoneID + "_" + kind + "_" + at.Format("2006-01-02_15-04-05") + ".csv"
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func render(rows [][]string) string {
	var buf bytes.Buffer
	buf.WriteString(bom)

	w := csv.NewWriter(&buf)
	// Writes to a bytes.Buffer cannot fail.
	_ = w.WriteAll(rows)

	return buf.String()
}
