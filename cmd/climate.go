package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/store"
)

var climateCmd = &cobra.Command{
	Use:   "climate",
	Short: "Manage the per-ZIP design condition table",
}

// -- climate import --

var climateImportCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Import surveyed ZIP design conditions",
	Long: `Upserts per-ZIP design conditions used in preference to the built-in
climate zone tables. Expected CSV columns:

  zip_code,climate_zone,latitude_deg,heating_design_temp_f,cooling_design_temp_f,daily_range_f`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		designs, err := readZipDesignCSV(args[0])
		if err != nil {
			return err
		}
		if len(designs) == 0 {
			return eris.New("no data rows in csv")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.ImportZipDesigns(ctx, designs)
		if err != nil {
			return eris.Wrap(err, "climate import")
		}

		zap.L().Info("climate import complete",
			zap.Int("parsed", len(designs)),
			zap.Int64("written", n),
		)
		fmt.Printf("imported %d ZIP design rows\n", n)
		return nil
	},
}

func readZipDesignCSV(path string) ([]store.ZipDesign, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open csv")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 6

	var designs []store.ZipDesign
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read csv line %d", line+1)
		}
		line++

		// Header row.
		if line == 1 && record[0] == "zip_code" {
			continue
		}

		design := store.ZipDesign{
			ZipCode:     record[0],
			ClimateZone: record[1],
		}
		for i, dst := range []*float64{
			&design.LatitudeDeg,
			&design.HeatingDesignTempF,
			&design.CoolingDesignTempF,
			&design.DailyRangeF,
		} {
			v, parseErr := strconv.ParseFloat(record[i+2], 64)
			if parseErr != nil {
				return nil, eris.Wrapf(parseErr, "csv line %d column %d", line, i+3)
			}
			*dst = v
		}
		if design.ZipCode == "" {
			return nil, eris.Errorf("csv line %d: empty zip_code", line)
		}
		designs = append(designs, design)
	}

	return designs, nil
}

func init() {
	climateCmd.AddCommand(climateImportCmd)
	rootCmd.AddCommand(climateCmd)
}
