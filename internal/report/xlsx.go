package report

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/model"
)

// ExportXLSX writes the analysis result to an XLSX workbook: a Summary
// sheet, the per-room Load Schedule, and per-floor aggregates.
func ExportXLSX(result *model.AnalysisResult, path string) error {
	if result == nil || result.Loads == nil {
		return eris.New("report: no loads to export")
	}

	f := xlsx.NewFile()

	if err := addSummarySheet(f, result); err != nil {
		return err
	}
	if err := addScheduleSheet(f, result.Loads); err != nil {
		return err
	}
	if err := addFloorSheet(f, result.Loads); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}

	zap.L().Info("report: workbook written",
		zap.String("path", path),
		zap.Int("rooms", len(result.Loads.Rooms)),
	)
	return nil
}

func addSummarySheet(f *xlsx.File, result *model.AnalysisResult) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	addKV := func(key, value string) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		row.AddCell().SetString(value)
	}

	addKV("Run ID", result.RunID)
	addKV("Project", result.ProjectID)

	if result.HVAC != nil {
		addKV("Heating load (BTU/hr)", fmt.Sprintf("%.0f", result.HVAC.TotalHeatingBTUHr))
		addKV("Cooling load (BTU/hr)", fmt.Sprintf("%.0f", result.HVAC.TotalCoolingBTUHr))
		addKV("Heating equipment (tons)", fmt.Sprintf("%.1f", result.HVAC.HeatingTons))
		addKV("Cooling equipment (tons)", fmt.Sprintf("%.1f", result.HVAC.CoolingTons))
	}
	addKV("Required supply (CFM)", fmt.Sprintf("%.0f", result.Loads.RequiredSupplyCFM))

	if result.Climate != nil {
		addKV("ZIP code", result.Climate.ZipCode)
		addKV("Climate zone", result.Climate.ClimateZone)
		addKV("Heating design temp (F)", fmt.Sprintf("%.0f", result.Climate.HeatingDesignTempF))
		addKV("Cooling design temp (F)", fmt.Sprintf("%.0f", result.Climate.CoolingDesignTempF))
	}
	if result.Metadata != nil {
		addKV("Scale (px/ft)", fmt.Sprintf("%.2f", result.Metadata.ScalePxPerFt))
		addKV("Scale method", result.Metadata.ScaleMethod)
		addKV("Confidence", fmt.Sprintf("%.2f", result.Metadata.Confidence))
		for _, w := range result.Metadata.Warnings {
			addKV("Warning", w)
		}
	}
	return nil
}

func addScheduleSheet(f *xlsx.File, loads *model.HVACLoads) error {
	sheet, err := f.AddSheet("Load Schedule")
	if err != nil {
		return eris.Wrap(err, "report: add schedule sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Room", "Type", "Zone", "Floor", "Area (sqft)",
		"Heating (BTU/hr)", "Cooling Sensible (BTU/hr)", "Cooling Latent (BTU/hr)",
	} {
		header.AddCell().SetString(h)
	}

	rooms := append([]model.RoomLoad(nil), loads.Rooms...)
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].FloorLevel != rooms[j].FloorLevel {
			return rooms[i].FloorLevel < rooms[j].FloorLevel
		}
		return rooms[i].Name < rooms[j].Name
	})

	for _, r := range rooms {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(string(r.Type))
		row.AddCell().SetString(r.ZoneName)
		row.AddCell().SetInt(r.FloorLevel)
		row.AddCell().SetFloat(r.AreaSqFt)
		row.AddCell().SetFloat(r.HeatingBTUHr)
		row.AddCell().SetFloat(r.CoolingSensibleBTUHr)
		row.AddCell().SetFloat(r.CoolingLatentBTUHr)
	}
	return nil
}

func addFloorSheet(f *xlsx.File, loads *model.HVACLoads) error {
	sheet, err := f.AddSheet("Floors")
	if err != nil {
		return eris.Wrap(err, "report: add floors sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Floor", "Area (sqft)", "Heating (BTU/hr)", "Cooling (BTU/hr)"} {
		header.AddCell().SetString(h)
	}

	levels := make([]int, 0, len(loads.PerFloor))
	for level := range loads.PerFloor {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	for _, level := range levels {
		fl := loads.PerFloor[level]
		row := sheet.AddRow()
		row.AddCell().SetInt(fl.FloorLevel)
		row.AddCell().SetFloat(fl.AreaSqFt)
		row.AddCell().SetFloat(fl.HeatingBTUHr)
		row.AddCell().SetFloat(fl.CoolingBTUHr)
	}
	return nil
}
