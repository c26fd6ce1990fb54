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
	"fmt"
	"math"
	"time"

	"github.com/tidewater-research/factor-api/dataframe"
)

// Recognized panel fields
const (
	FieldOpen     = "Open"
	FieldHigh     = "High"
	FieldLow      = "Low"
	FieldClose    = "Close"
	FieldAdjClose = "AdjClose"
	FieldVolume   = "Volume"
)

// Panel is a (date x field x asset) table of price observations. Dates are
// strictly increasing and asset identifiers are unique. Vals is keyed by
// field; each entry is asset major - Vals[field][assetIdx][rowIdx]. Missing
// observations (delistings, late IPOs, data gaps) are math.NaN().
type Panel struct {
	Dates  []time.Time
	Assets []string
	Vals   map[string][][]float64
}

// NewPanel constructs an empty panel with every observation initialized to
// NaN for the given dates, assets and fields
func NewPanel(dates []time.Time, assets []string, fields []string) *Panel {
	vals := make(map[string][][]float64, len(fields))
	for _, field := range fields {
		cols := make([][]float64, len(assets))
		for assetIdx := range assets {
			col := make([]float64, len(dates))
			for rowIdx := range col {
				col[rowIdx] = math.NaN()
			}
			cols[assetIdx] = col
		}
		vals[field] = cols
	}

	return &Panel{
		Dates:  dates,
		Assets: assets,
		Vals:   vals,
	}
}

// Fields returns the list of fields present in the panel
func (p *Panel) Fields() []string {
	fields := make([]string, 0, len(p.Vals))
	for field := range p.Vals {
		fields = append(fields, field)
	}
	return fields
}

// Field projects a single field across all assets into a date-indexed matrix
// with one column per asset. The panel is never mutated; the returned frame
// owns its values. Returns ErrMissingField when the field is not present.
func (p *Panel) Field(field string) (*dataframe.DataFrame[time.Time], error) {
	cols, ok := p.Vals[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	df := &dataframe.DataFrame[time.Time]{
		Index:    make([]time.Time, len(p.Dates)),
		ColNames: make([]string, len(p.Assets)),
		Vals:     make([][]float64, len(p.Assets)),
	}

	copy(df.Index, p.Dates)
	copy(df.ColNames, p.Assets)

	for assetIdx := range p.Assets {
		df.Vals[assetIdx] = make([]float64, len(p.Dates))
		copy(df.Vals[assetIdx], cols[assetIdx])
	}

	return df, nil
}

// Matrix projects a field and resamples it to the requested frequency in one
// step; see Field and dataframe.Resample
func (p *Panel) Matrix(field string, frequency dataframe.Frequency) (*dataframe.DataFrame[time.Time], error) {
	df, err := p.Field(field)
	if err != nil {
		return nil, err
	}
	return df.Resample(frequency), nil
}
