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

package dataframe

import (
	"math"
	"time"
)

// Resample converts a date-indexed dataframe to the requested frequency and
// returns a new dataframe. Daily is the identity. Monthly keeps one row per
// calendar month; each column carries the last non-NaN observation of that
// column within the month and the row is indexed by the last date observed in
// the month. A column with no observation in a month is NaN for that month.
//
// No dates are invented: every index entry of the result is present in the
// source index.
//
// NOTE: If T is not time.Time then a copy of the dataframe is returned
// unchanged.
func (df *DataFrame[T]) Resample(frequency Frequency) *DataFrame[T] {
	if frequency == Daily || df.Len() == 0 {
		return df.Copy()
	}

	if _, ok := any(df.Index[0]).(time.Time); !ok {
		return df.Copy()
	}

	newIndex := make([]T, 0, df.Len())
	newVals := make([][]float64, len(df.ColNames))

	appendMonth := func(lastRow int, vals []float64) {
		newIndex = append(newIndex, df.Index[lastRow])
		for colIdx := range newVals {
			newVals[colIdx] = append(newVals[colIdx], vals[colIdx])
		}
	}

	monthVals := make([]float64, len(df.ColNames))
	for colIdx := range monthVals {
		monthVals[colIdx] = math.NaN()
	}

	var currYear int
	var currMonth time.Month
	lastRow := -1

	for rowIdx, idxVal := range df.Index {
		dt := any(idxVal).(time.Time)
		if lastRow != -1 && (dt.Year() != currYear || dt.Month() != currMonth) {
			appendMonth(lastRow, monthVals)
			for colIdx := range monthVals {
				monthVals[colIdx] = math.NaN()
			}
		}

		currYear = dt.Year()
		currMonth = dt.Month()
		lastRow = rowIdx

		for colIdx, col := range df.Vals {
			if !math.IsNaN(col[rowIdx]) {
				monthVals[colIdx] = col[rowIdx]
			}
		}
	}

	if lastRow != -1 {
		appendMonth(lastRow, monthVals)
	}

	return &DataFrame[T]{
		Index:    newIndex,
		ColNames: df.ColNames,
		Vals:     newVals,
	}
}
