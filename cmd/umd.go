// Copyright 2023-2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidewater-research/factor-api/data"
	"github.com/tidewater-research/factor-api/dataframe"
	"github.com/tidewater-research/factor-api/factor"
	"github.com/tidewater-research/factor-api/regression"
)

func init() {
	rootCmd.AddCommand(umdCmd)

	umdCmd.Flags().String("tickers", "", "CSV universe file with a Symbol column")
	viper.BindPFlag("umd.tickers", umdCmd.Flags().Lookup("tickers"))

	umdCmd.Flags().Float64("x-percent", 0.3, "Fractional cutoff for winners/losers in (0, 0.5]")
	viper.BindPFlag("umd.x_percent", umdCmd.Flags().Lookup("x-percent"))

	umdCmd.Flags().String("factor-file", "ff_monthly.csv", "Monthly benchmark factor CSV (YYYYMM index, percent units)")
	viper.BindPFlag("umd.factor_file", umdCmd.Flags().Lookup("factor-file"))

	umdCmd.Flags().StringSlice("factors", []string{"Mkt-RF", "SMB", "HML"}, "Benchmark factor columns to regress against")
	viper.BindPFlag("umd.factors", umdCmd.Flags().Lookup("factors"))

	umdCmd.Flags().String("output", "", "Write the UMD series to this CSV file")
	viper.BindPFlag("umd.output", umdCmd.Flags().Lookup("output"))

	umdCmd.Flags().Bool("print-series", false, "Print the UMD series before the regression summary")
	viper.BindPFlag("umd.print_series", umdCmd.Flags().Lookup("print-series"))
}

var umdCmd = &cobra.Command{
	Use:   "umd [tickers...]",
	Short: "Build the UMD momentum factor and regress it on benchmark factors",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		tickers := args
		if tickerFile := viper.GetString("umd.tickers"); tickerFile != "" {
			var err error
			tickers, err = readTickerFile(tickerFile)
			if err != nil {
				log.Fatal().Err(err).Str("File", tickerFile).Msg("could not read ticker universe")
			}
		}
		if len(tickers) == 0 {
			log.Fatal().Msg("no tickers given; pass them as arguments or with --tickers")
		}

		manager := newManager()
		manager.Frequency = dataframe.Monthly

		panel, err := manager.GetPanel(ctx, tickers...)
		if err != nil {
			log.Fatal().Err(err).Msg("could not fetch price panel")
		}

		closes, err := panel.Matrix(data.FieldAdjClose, dataframe.Monthly)
		if err != nil {
			log.Fatal().Err(err).Msg("could not project close matrix")
		}
		closes = closes.Trim(manager.Begin, manager.End)

		umd, err := factor.BuildUMD(closes, viper.GetFloat64("umd.x_percent"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not build UMD factor")
		}

		if viper.GetBool("umd.print_series") {
			fmt.Println(umd.Table())
		}

		if output := viper.GetString("umd.output"); output != "" {
			if err := writeSeriesCSV(output, umd); err != nil {
				log.Fatal().Err(err).Str("File", output).Msg("could not write UMD series")
			}
		}

		factorTable, err := data.LoadFactorFile(viper.GetString("umd.factor_file"))
		if err != nil {
			log.Fatal().Err(err).Str("File", viper.GetString("umd.factor_file")).Msg("could not load benchmark factors")
		}

		result, err := regression.Regress(umd, factorTable.Frame, viper.GetStringSlice("umd.factors")...)
		if err != nil {
			log.Fatal().Err(err).Msg("regression failed")
		}

		fmt.Printf("UMD factor regression (%d months)\n\n", result.NObs)
		fmt.Println(result.Table())
	},
}

func writeSeriesCSV(path string, df *dataframe.DataFrame[time.Time]) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	writer := csv.NewWriter(fh)
	defer writer.Flush()

	if err := writer.Write(append([]string{"Date"}, df.ColNames...)); err != nil {
		return err
	}

	for rowIdx, dt := range df.Index {
		record := make([]string, 0, df.ColCount()+1)
		record = append(record, dt.Format("200601"))
		for colIdx := range df.Vals {
			record = append(record, fmt.Sprintf("%f", df.Vals[colIdx][rowIdx]))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
