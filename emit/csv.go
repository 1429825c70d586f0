// Package emit holds the external-interface adapters: CSV and terminal
// table emission, and the colo/status filter policy shared by probe and
// download stages. None of it carries core business logic (spec §1 calls
// CSV/table formatting an external collaborator), but it ships built the
// way the pack builds it — encoding/csv plus text/tabwriter, grounded on
// ja7ad-consumption/cmd/consumption/main.go's output pairing.
package emit

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ekobres/edgerank/model"
)

// CSVHeader is the exact schema of spec §6.
func CSVHeader() []string {
	return []string{"IP", "Sent", "Received", "LossRate", "AvgDelayMs", "SpeedMBps", "Colo"}
}

// WriteCSV emits rows in the given order (already ranked by the caller)
// to w, UTF-8, header row present, 2-decimal LossRate/AvgDelayMs/SpeedMBps,
// uppercase-or-empty Colo, and the IP field bracketed-with-port when
// includePort is set (spec §6 "-sp").
func WriteCSV(w io.Writer, rows []model.Measurement, includePort bool) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(CSVHeader()); err != nil {
		return err
	}
	for _, m := range rows {
		if err := cw.Write(formatRow(m, includePort)); err != nil {
			return err
		}
	}
	return cw.Error()
}

func formatRow(m model.Measurement, includePort bool) []string {
	ip := m.Endpoint.Addr.String()
	if includePort {
		ip = m.Endpoint.String()
	}

	speed := ""
	if m.DownloadMBs != nil {
		speed = strconv.FormatFloat(*m.DownloadMBs, 'f', 2, 64)
	}

	return []string{
		ip,
		strconv.Itoa(int(m.Sent)),
		strconv.Itoa(int(m.Received)),
		strconv.FormatFloat(m.LossRate(), 'f', 2, 64),
		strconv.FormatFloat(m.AvgDelayMs, 'f', 2, 64),
		speed,
		m.Colo,
	}
}
