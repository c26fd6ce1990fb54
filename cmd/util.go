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
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/tidewater-research/factor-api/common"
	"github.com/tidewater-research/factor-api/data"
)

// readTickerFile reads asset identifiers from the `Symbol` column of a CSV
// universe file (e.g. sp500_symbols.csv)
func readTickerFile(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("ticker file %s has no data rows", path)
	}

	symbolCol := -1
	for colIdx, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), "Symbol") {
			symbolCol = colIdx
			break
		}
	}
	if symbolCol == -1 {
		return nil, fmt.Errorf("ticker file %s has no Symbol column", path)
	}

	tickers := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		symbol := strings.TrimSpace(record[symbolCol])
		if symbol != "" {
			tickers = append(tickers, symbol)
		}
	}

	common.ArrToUpper(tickers)
	return tickers, nil
}

// newManager builds a data manager for the configured date range and
// provider token
func newManager() *data.Manager {
	manager := data.NewManager(data.NewTiingo(viper.GetString("tiingo.token")))

	start, err := time.Parse("2006-01-02", viper.GetString("range.start"))
	if err != nil {
		log.Fatal().Err(err).Str("Start", viper.GetString("range.start")).Msg("could not parse start date")
	}
	manager.Begin = start

	endStr := viper.GetString("range.end")
	if endStr == "" {
		manager.End = time.Now()
	} else {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			log.Fatal().Err(err).Str("End", endStr).Msg("could not parse end date")
		}
		// quotes don't exist for the future
		manager.End = common.MinTime(end, time.Now())
	}

	return manager
}
