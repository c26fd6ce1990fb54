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
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidewater-research/factor-api/data"
	"github.com/tidewater-research/factor-api/dataframe"
	"github.com/tidewater-research/factor-api/momentum"
)

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().String("tickers", "", "CSV universe file with a Symbol column")
	viper.BindPFlag("select.tickers", selectCmd.Flags().Lookup("tickers"))

	selectCmd.Flags().Int("lookback", 12, "Rows to look back for momentum; counted in the fetch interval's units")
	viper.BindPFlag("select.lookback", selectCmd.Flags().Lookup("lookback"))

	selectCmd.Flags().Int("lag", 1, "Rows to hold out before measurement")
	viper.BindPFlag("select.lag", selectCmd.Flags().Lookup("lag"))

	selectCmd.Flags().Int("num-positions", 10, "Number of assets per side of the long/short book")
	viper.BindPFlag("select.num_positions", selectCmd.Flags().Lookup("num-positions"))

	selectCmd.Flags().String("interval", "monthly", "Fetch interval: daily or monthly")
	viper.BindPFlag("select.interval", selectCmd.Flags().Lookup("interval"))
}

var selectCmd = &cobra.Command{
	Use:   "select [tickers...]",
	Short: "Select long/short positions by cross-sectional momentum rank",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		tickers := args
		if tickerFile := viper.GetString("select.tickers"); tickerFile != "" {
			var err error
			tickers, err = readTickerFile(tickerFile)
			if err != nil {
				log.Fatal().Err(err).Str("File", tickerFile).Msg("could not read ticker universe")
			}
		}
		if len(tickers) == 0 {
			log.Fatal().Msg("no tickers given; pass them as arguments or with --tickers")
		}

		frequency := dataframe.Monthly
		if viper.GetString("select.interval") == "daily" {
			frequency = dataframe.Daily
		}

		manager := newManager()
		manager.Frequency = frequency

		panel, err := manager.GetPanel(ctx, tickers...)
		if err != nil {
			log.Fatal().Err(err).Msg("could not fetch price panel")
		}

		closes, err := panel.Matrix(data.FieldAdjClose, frequency)
		if err != nil {
			log.Fatal().Err(err).Msg("could not project close matrix")
		}
		closes = closes.Trim(manager.Begin, manager.End)

		lookback := viper.GetInt("select.lookback")
		lag := viper.GetInt("select.lag")

		score, err := momentum.Score(closes, lookback, lag)
		if err != nil {
			log.Fatal().Err(err).Msg("could not score momentum")
		}
		rank := momentum.Rank(score)

		selection, err := momentum.Select(rank, viper.GetInt("select.num_positions"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not select positions")
		}

		fmt.Printf("Momentum selection as of %s (lookback=%d lag=%d)\n\n",
			selection.Date.Format("2006-01-02"), lookback, lag)
		printBook("LONG", selection.Longs)
		fmt.Println()
		printBook("SHORT", selection.Shorts)
	},
}

func printBook(side string, positions []momentum.Position) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Asset", "Momentum Rank"})
	table.SetBorder(false)
	for ii, pos := range positions {
		table.Append([]string{
			fmt.Sprintf("%d", ii+1),
			pos.Asset,
			fmt.Sprintf("%.1f%%", pos.Rank*100),
		})
	}
	table.SetFooter([]string{"", "Side", side})
	table.Render()
}
