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

// Package factor constructs the monthly UMD (up-minus-down) momentum factor
// from a monthly close matrix.
package factor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tidewater-research/factor-api/common"
	"github.com/tidewater-research/factor-api/dataframe"
	"github.com/tidewater-research/factor-api/momentum"
)

// Canonical 12-minus-1 momentum: price one month ago over price thirteen
// months ago. These are fixed by definition; do not reparametrize.
const (
	UMDLookback = 12
	UMDLag      = 1
)

// UMDColumn names the single column of the constructed series
const UMDColumn = "UMD"

var (
	ErrInvalidCutoff = errors.New("winners/losers cutoff must be in (0, 0.5]")
)

// BuildUMD constructs the winners-minus-losers momentum factor from a
// monthly close matrix. For every month, assets with percentile rank
// >= 1-xPercent are winners and assets with rank <= xPercent are losers; the
// UMD value is the mean monthly return of the winners minus the mean monthly
// return of the losers. Months where either mean is undefined are dropped.
//
// The result is indexed by month period (midnight UTC on the first of the
// month) with a single UMD column.
func BuildUMD(monthlyClose *dataframe.DataFrame[time.Time], xPercent float64) (*dataframe.DataFrame[time.Time], error) {
	if xPercent <= 0 || xPercent > 0.5 {
		return nil, fmt.Errorf("%w: got %f", ErrInvalidCutoff, xPercent)
	}

	returns := monthlyClose.PctChange()
	score, err := momentum.Score(monthlyClose, UMDLookback, UMDLag)
	if err != nil {
		return nil, err
	}
	rank := momentum.Rank(score)

	umd := &dataframe.DataFrame[time.Time]{Index: []time.Time{}}
	umd.Insert(UMDColumn, []float64{})

	winners := make([]float64, 0, monthlyClose.ColCount())
	losers := make([]float64, 0, monthlyClose.ColCount())

	for rowIdx, dt := range monthlyClose.Index {
		winners = winners[:0]
		losers = losers[:0]

		ranks := rank.Row(rowIdx)
		rets := returns.Row(rowIdx)

		minRank, maxRank := math.NaN(), math.NaN()
		for _, r := range ranks {
			if math.IsNaN(r) {
				continue
			}
			if math.IsNaN(minRank) || r < minRank {
				minRank = r
			}
			if math.IsNaN(maxRank) || r > maxRank {
				maxRank = r
			}
		}

		// with zero cross-sectional variance no threshold can separate
		// winners from losers; every ranked asset sits on both sides and
		// the factor is 0 for the period
		allTied := !math.IsNaN(minRank) && minRank == maxRank

		for colIdx, r := range ranks {
			if math.IsNaN(r) {
				continue
			}

			ret := rets[colIdx]
			if math.IsNaN(ret) {
				continue
			}

			if allTied || r >= 1-xPercent {
				winners = append(winners, ret)
			}
			if allTied || r <= xPercent {
				losers = append(losers, ret)
			}
		}

		// drop the period when either side is undefined
		if len(winners) == 0 || len(losers) == 0 {
			continue
		}

		umd.Index = append(umd.Index, common.MonthBegin(dt))
		umd.Vals[0] = append(umd.Vals[0], stat.Mean(winners, nil)-stat.Mean(losers, nil))
	}

	return umd, nil
}
