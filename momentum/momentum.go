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

// Package momentum computes cross-sectional momentum scores, percentile
// ranks, and long/short selections over a close-price matrix.
//
// Lookback and lag are counted in the matrix's own row units; feeding a daily
// matrix yields day-based scores and a monthly matrix yields month-based
// scores. The caller chooses a granularity-consistent matrix.
package momentum

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tidewater-research/factor-api/dataframe"
)

var (
	ErrInsufficientData = errors.New("not enough data for requested selection")
	ErrInvalidWindow    = errors.New("momentum window is invalid")
)

// Position is a selected asset and its percentile rank
type Position struct {
	Asset string
	Rank  float64
}

// Selection is the long/short book derived from a single row of the rank
// matrix
type Selection struct {
	Date   time.Time
	Longs  []Position
	Shorts []Position
}

// Score computes score[t] = close[t-lag]/close[t-lag-lookback] - 1 for every
// asset. Rows with fewer than lag+lookback preceding rows are NaN, as is any
// entry where either endpoint price is missing. Returns ErrInvalidWindow for
// a non-positive lookback or a negative lag.
func Score(close *dataframe.DataFrame[time.Time], lookback, lag int) (*dataframe.DataFrame[time.Time], error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("%w: lookback must be > 0, got %d", ErrInvalidWindow, lookback)
	}
	if lag < 0 {
		return nil, fmt.Errorf("%w: lag must be >= 0, got %d", ErrInvalidWindow, lag)
	}

	delayed := close.Lag(lag)
	starting := close.Lag(lag + lookback)

	score := delayed.Copy()
	for colIdx := range score.Vals {
		for rowIdx := range score.Vals[colIdx] {
			score.Vals[colIdx][rowIdx] = delayed.Vals[colIdx][rowIdx]/starting.Vals[colIdx][rowIdx] - 1
		}
	}

	return score, nil
}

// Rank computes the percentile rank of each asset within its row using the
// midpoint convention: tied scores share the mean of their ordinal ranks and
// the result is (meanRank - 0.5) / n, where n counts only the non-missing
// entries of the row. Missing scores stay missing and are excluded from n.
func Rank(score *dataframe.DataFrame[time.Time]) *dataframe.DataFrame[time.Time] {
	rank := score.Copy()

	entries := make([]int, 0, score.ColCount())
	for rowIdx := range score.Index {
		entries = entries[:0]
		for colIdx := range score.Vals {
			if !math.IsNaN(score.Vals[colIdx][rowIdx]) {
				entries = append(entries, colIdx)
			}
		}

		if len(entries) == 0 {
			continue
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return score.Vals[entries[i]][rowIdx] < score.Vals[entries[j]][rowIdx]
		})

		n := float64(len(entries))
		for ii := 0; ii < len(entries); {
			// find the extent of the tie group starting at ii
			jj := ii + 1
			for jj < len(entries) && score.Vals[entries[jj]][rowIdx] == score.Vals[entries[ii]][rowIdx] {
				jj++
			}

			// ordinal ranks are 1-based; tied entries share the group mean
			meanRank := float64(ii+jj+1) / 2.0
			for kk := ii; kk < jj; kk++ {
				rank.Vals[entries[kk]][rowIdx] = (meanRank - 0.5) / n
			}

			ii = jj
		}
	}

	return rank
}

// Select builds the long/short book from the most recent row of the rank
// matrix that has at least 2*numPositions ranked assets. Longs are the top
// numPositions assets by rank descending and shorts the bottom numPositions
// by rank ascending; ties break by asset identifier ascending so repeated
// runs over identical input select identical books. Returns
// ErrInsufficientData when no row qualifies.
func Select(rank *dataframe.DataFrame[time.Time], numPositions int) (*Selection, error) {
	if numPositions <= 0 {
		return nil, fmt.Errorf("%w: numPositions must be > 0, got %d", ErrInsufficientData, numPositions)
	}

	for rowIdx := rank.Len() - 1; rowIdx >= 0; rowIdx-- {
		ranked := make([]Position, 0, rank.ColCount())
		for colIdx, asset := range rank.ColNames {
			if val := rank.Vals[colIdx][rowIdx]; !math.IsNaN(val) {
				ranked = append(ranked, Position{Asset: asset, Rank: val})
			}
		}

		if len(ranked) < 2*numPositions {
			continue
		}

		descending := make([]Position, len(ranked))
		copy(descending, ranked)
		sort.SliceStable(descending, func(i, j int) bool {
			if descending[i].Rank != descending[j].Rank {
				return descending[i].Rank > descending[j].Rank
			}
			return descending[i].Asset < descending[j].Asset
		})

		ascending := make([]Position, len(ranked))
		copy(ascending, ranked)
		sort.SliceStable(ascending, func(i, j int) bool {
			if ascending[i].Rank != ascending[j].Rank {
				return ascending[i].Rank < ascending[j].Rank
			}
			return ascending[i].Asset < ascending[j].Asset
		})

		longs := make([]Position, numPositions)
		copy(longs, descending[:numPositions])

		shorts := make([]Position, numPositions)
		copy(shorts, ascending[:numPositions])

		return &Selection{
			Date:   rank.Index[rowIdx],
			Longs:  longs,
			Shorts: shorts,
		}, nil
	}

	return nil, fmt.Errorf("%w: no row with at least %d ranked assets", ErrInsufficientData, 2*numPositions)
}
