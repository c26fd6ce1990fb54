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
	"fmt"
	"time"

	"github.com/tidewater-research/factor-api/common"
)

// MergeMonthly inner joins two date-indexed dataframes on their calendar
// month. Row dates are first normalized to the month period key (midnight UTC
// on the first of the month); a month present in only one frame is dropped,
// never forward-filled. The result's index holds the period keys in the left
// frame's chronological order and its columns are left's columns followed by
// right's.
//
// Returns ErrEmptyOverlap when no month appears in both frames and
// ErrColumnClash when the frames share a column name.
func MergeMonthly(left, right *DataFrame[time.Time]) (*DataFrame[time.Time], error) {
	for _, colName := range right.ColNames {
		if left.ColIndex(colName) != -1 {
			return nil, fmt.Errorf("%w: %s", ErrColumnClash, colName)
		}
	}

	rightRows := make(map[time.Time]int, right.Len())
	for rowIdx, dt := range right.Index {
		rightRows[common.MonthBegin(dt)] = rowIdx
	}

	merged := &DataFrame[time.Time]{
		Index:    []time.Time{},
		ColNames: append(append([]string{}, left.ColNames...), right.ColNames...),
		Vals:     make([][]float64, left.ColCount()+right.ColCount()),
	}

	for rowIdx, dt := range left.Index {
		period := common.MonthBegin(dt)
		otherIdx, ok := rightRows[period]
		if !ok {
			continue
		}

		merged.Index = append(merged.Index, period)
		for colIdx := range left.Vals {
			merged.Vals[colIdx] = append(merged.Vals[colIdx], left.Vals[colIdx][rowIdx])
		}
		for colIdx := range right.Vals {
			merged.Vals[left.ColCount()+colIdx] = append(merged.Vals[left.ColCount()+colIdx], right.Vals[colIdx][otherIdx])
		}
	}

	if merged.Len() == 0 {
		return nil, fmt.Errorf("%w: %s-%s vs %s-%s", ErrEmptyOverlap,
			left.Start().Format("2006-01"), left.End().Format("2006-01"),
			right.Start().Format("2006-01"), right.End().Format("2006-01"))
	}

	return merged, nil
}
