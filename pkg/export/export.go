// Package export writes station-count sweeps in CSV, JSON or as an HTML
// line chart.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/chargesim/core/simulation"
)

// Formats accepted by Write.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatHTML = "html"
)

// Write renders points in the named format.
func Write(w io.Writer, format string, points []simulation.SweepPoint) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, points)
	case FormatJSON:
		return WriteJSON(w, points)
	case FormatHTML:
		return WriteChart(w, "Concurrency factor by station count", points)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes the sweep to w in JSON format.
func WriteJSON(w io.Writer, points []simulation.SweepPoint) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(points)
}

// WriteCSV writes the sweep to w in CSV format.
func WriteCSV(w io.Writer, points []simulation.SweepPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"station_count", "concurrency_factor", "actual_maximum_power_demand_kw", "total_energy_consumed_kwh"}); err != nil {
		return err
	}
	for _, p := range points {
		rec := []string{
			strconv.Itoa(p.StationCount),
			strconv.FormatFloat(p.ConcurrencyFactor, 'f', -1, 64),
			strconv.FormatFloat(p.PeakPowerKW, 'f', -1, 64),
			strconv.FormatFloat(p.EnergyKWh, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteChart renders the sweep as a standalone HTML line chart.
func WriteChart(w io.Writer, title string, points []simulation.SweepPoint) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Charge points"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Concurrency factor (%)"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xAxis := make([]string, len(points))
	cf := make([]opts.LineData, len(points))
	for i, p := range points {
		xAxis[i] = strconv.Itoa(p.StationCount)
		cf[i] = opts.LineData{Value: p.ConcurrencyFactor}
	}
	line.SetXAxis(xAxis).AddSeries("Concurrency factor", cf)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
