// Package report renders analysis results for humans: terminal tables for
// the CLI and XLSX workbooks for handoff to estimators.
package report

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/draftworks/manualj-cli/internal/model"
)

var btuPrinter = message.NewPrinter(language.AmericanEnglish)

var scheduleHeader = table.Row{
	"Room", "Type", "Zone", "Floor", "Area (sqft)",
	"Heating (BTU/hr)", "Cooling Sens.", "Cooling Lat.", "Cooling Total",
}

// RenderLoadSchedule renders the per-room load schedule with floor subtotals
// and a building total row.
func RenderLoadSchedule(loads *model.HVACLoads) string {
	if loads == nil || len(loads.Rooms) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(scheduleHeader)
	tw.SetColumnConfigs(rightAlignFrom(5, len(scheduleHeader)))

	byFloor := map[int][]model.RoomLoad{}
	for _, r := range loads.Rooms {
		byFloor[r.FloorLevel] = append(byFloor[r.FloorLevel], r)
	}
	floors := make([]int, 0, len(byFloor))
	for level := range byFloor {
		floors = append(floors, level)
	}
	sort.Ints(floors)

	for _, level := range floors {
		rooms := byFloor[level]
		sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })

		var areaSum, heatSum, coolSum float64
		for _, r := range rooms {
			tw.AppendRow(table.Row{
				r.Name,
				string(r.Type),
				r.ZoneName,
				r.FloorLevel,
				formatArea(r.AreaSqFt),
				formatBTU(r.HeatingBTUHr),
				formatBTU(r.CoolingSensibleBTUHr),
				formatBTU(r.CoolingLatentBTUHr),
				formatBTU(r.CoolingBTUHr()),
			})
			areaSum += r.AreaSqFt
			heatSum += r.HeatingBTUHr
			coolSum += r.CoolingBTUHr()
		}
		if len(floors) > 1 {
			tw.AppendRow(table.Row{
				fmt.Sprintf("Floor %d subtotal", level), "", "", "",
				formatArea(areaSum), formatBTU(heatSum), "", "", formatBTU(coolSum),
			})
		}
	}

	var totalArea float64
	for _, r := range loads.Rooms {
		totalArea += r.AreaSqFt
	}
	tw.AppendFooter(table.Row{
		"Total", "", "", "",
		formatArea(totalArea),
		formatBTU(loads.TotalHeatingBTUHr), "", "",
		formatBTU(loads.TotalCoolingBTUHr),
	})

	return tw.Render()
}

// RenderSummary renders the equipment-sizing and provenance summary.
func RenderSummary(result *model.AnalysisResult) string {
	if result == nil {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	if result.HVAC != nil {
		tw.AppendRow(table.Row{"Heating load", formatBTU(result.HVAC.TotalHeatingBTUHr) + " BTU/hr"})
		tw.AppendRow(table.Row{"Cooling load", formatBTU(result.HVAC.TotalCoolingBTUHr) + " BTU/hr"})
		tw.AppendRow(table.Row{"Heating equipment", fmt.Sprintf("%.1f tons", result.HVAC.HeatingTons)})
		tw.AppendRow(table.Row{"Cooling equipment", fmt.Sprintf("%.1f tons", result.HVAC.CoolingTons)})
	}
	if result.Loads != nil {
		tw.AppendRow(table.Row{"Required supply", fmt.Sprintf("%.0f CFM", result.Loads.RequiredSupplyCFM)})
	}
	if result.Climate != nil {
		tw.AppendRow(table.Row{"Climate zone", result.Climate.ClimateZone})
		tw.AppendRow(table.Row{"Design temps", fmt.Sprintf("%.0f°F / %.0f°F",
			result.Climate.HeatingDesignTempF, result.Climate.CoolingDesignTempF)})
	}
	if result.Metadata != nil {
		tw.AppendRow(table.Row{"Scale", fmt.Sprintf("%.1f px/ft (%s)",
			result.Metadata.ScalePxPerFt, result.Metadata.ScaleMethod)})
		tw.AppendRow(table.Row{"Confidence", fmt.Sprintf("%.0f%%", result.Metadata.Confidence*100)})
	}

	return tw.Render()
}

// RenderRunList renders stored runs for the runs list command.
func RenderRunList(runs []model.Run) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run ID", "Project", "PDF", "Status", "Created"})

	for _, r := range runs {
		tw.AppendRow(table.Row{
			r.ID,
			r.Request.ProjectID,
			r.Request.PDFPath,
			string(r.Status),
			r.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	return tw.Render()
}

// RenderPhases renders per-phase timing for the runs get command.
func RenderPhases(phases []model.PhaseResult) string {
	if len(phases) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Phase", "Status", "Duration (ms)", "Error"})
	tw.SetColumnConfigs(rightAlignFrom(3, 3))

	for _, p := range phases {
		tw.AppendRow(table.Row{p.Name, string(p.Status), p.Duration, p.Error})
	}

	return tw.Render()
}

func rightAlignFrom(first, total int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, total-first+1)
	for i := first; i <= total; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	return configs
}

func formatBTU(v float64) string {
	return btuPrinter.Sprintf("%.0f", v)
}

func formatArea(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
