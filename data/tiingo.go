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

package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/tidewater-research/factor-api/dataframe"
)

var tiingoAPI = "https://api.tiingo.com"

const tiingoWorkers = 10

type tiingo struct {
	apikey string
}

type tiingoJSONResponse struct {
	Date        string  `json:"date"`
	Close       float64 `json:"close"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Open        float64 `json:"open"`
	Volume      int64   `json:"volume"`
	AdjClose    float64 `json:"adjClose"`
	AdjHigh     float64 `json:"adjHigh"`
	AdjLow      float64 `json:"adjLow"`
	AdjOpen     float64 `json:"adjOpen"`
	AdjVolume   int64   `json:"adjVolume"`
	DivCash     float64 `json:"divCash"`
	SplitFactor float64 `json:"splitFactor"`
}

type quoteResult struct {
	Asset  string
	Quotes []tiingoJSONResponse
	Err    error
}

// NewTiingo creates a new Tiingo end-of-day data provider
func NewTiingo(key string) Provider {
	return &tiingo{
		apikey: key,
	}
}

// Fetch downloads EOD quotes for each asset and assembles them into a Panel.
// Assets that cannot be downloaded are logged and left as NaN columns;
// ErrProviderFailed is returned only when every asset fails.
func (t *tiingo) Fetch(ctx context.Context, assets []string, begin, end time.Time, frequency dataframe.Frequency) (*Panel, error) {
	if begin.After(end) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidTimeRange,
			begin.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	resampleFreq := "daily"
	if frequency == dataframe.Monthly {
		resampleFreq = "monthly"
	}

	ch := make(chan quoteResult)
	quotes := make(map[string][]tiingoJSONResponse, len(assets))

	for _, chunk := range partitionAssets(assets, tiingoWorkers) {
		for ii := range chunk {
			go t.downloadWorker(ctx, ch, chunk[ii], resampleFreq, begin, end)
		}

		for range chunk {
			v := <-ch
			if v.Err != nil {
				log.Warn().Err(v.Err).Str("Asset", v.Asset).Msg("could not download asset quotes")
				continue
			}
			quotes[v.Asset] = v.Quotes
		}
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: all %d assets failed", ErrProviderFailed, len(assets))
	}

	return assemblePanel(assets, quotes)
}

func (t *tiingo) downloadWorker(ctx context.Context, result chan<- quoteResult, asset string, resampleFreq string, begin, end time.Time) {
	quotes, err := t.loadQuotes(ctx, asset, resampleFreq, begin, end)
	result <- quoteResult{
		Asset:  asset,
		Quotes: quotes,
		Err:    err,
	}
}

func (t *tiingo) loadQuotes(ctx context.Context, asset string, resampleFreq string, begin, end time.Time) ([]tiingoJSONResponse, error) {
	url := fmt.Sprintf("%s/tiingo/daily/%s/prices?startDate=%s&endDate=%s&resampleFreq=%s&token=%s",
		tiingoAPI, asset, begin.Format("2006-01-02"), end.Format("2006-01-02"), resampleFreq, t.apikey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP request returned invalid status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	quotes := []tiingoJSONResponse{}
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, err
	}

	return quotes, nil
}

// assemblePanel merges per-asset quote lists onto a common date axis. The
// axis is the sorted union of all observed dates; an asset without a quote on
// a given date keeps NaN there.
func assemblePanel(assets []string, quotes map[string][]tiingoJSONResponse) (*Panel, error) {
	dateSet := make(map[time.Time]bool)
	parsed := make(map[string]map[time.Time]tiingoJSONResponse, len(quotes))

	for asset, quoteList := range quotes {
		byDate := make(map[time.Time]tiingoJSONResponse, len(quoteList))
		for _, quote := range quoteList {
			dt, err := time.Parse(time.RFC3339, quote.Date)
			if err != nil {
				log.Warn().Str("Asset", asset).Str("Date", quote.Date).Msg("could not parse quote date")
				continue
			}
			dt = time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC)
			dateSet[dt] = true
			byDate[dt] = quote
		}
		parsed[asset] = byDate
	}

	dates := make([]time.Time, 0, len(dateSet))
	for dt := range dateSet {
		dates = append(dates, dt)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	fields := []string{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldAdjClose, FieldVolume}
	panel := NewPanel(dates, assets, fields)

	for assetIdx, asset := range assets {
		byDate, ok := parsed[asset]
		if !ok {
			continue
		}
		for rowIdx, dt := range dates {
			quote, ok := byDate[dt]
			if !ok {
				continue
			}
			panel.Vals[FieldOpen][assetIdx][rowIdx] = quote.Open
			panel.Vals[FieldHigh][assetIdx][rowIdx] = quote.High
			panel.Vals[FieldLow][assetIdx][rowIdx] = quote.Low
			panel.Vals[FieldClose][assetIdx][rowIdx] = quote.Close
			panel.Vals[FieldAdjClose][assetIdx][rowIdx] = quote.AdjClose
			panel.Vals[FieldVolume][assetIdx][rowIdx] = float64(quote.Volume)
		}
	}

	return panel, nil
}

func partitionAssets(assets []string, chunkSize int) [][]string {
	chunks := make([][]string, 0, len(assets)/chunkSize+1)
	for chunkSize < len(assets) {
		assets, chunks = assets[chunkSize:], append(chunks, assets[0:chunkSize:chunkSize])
	}
	return append(chunks, assets)
}
