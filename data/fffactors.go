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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidewater-research/factor-api/dataframe"
)

// FactorTable is a monthly table of named benchmark return factors (e.g. the
// Fama-French research factors). Values arrive in percent units from the
// source and must be scaled to decimal exactly once before use; the scaled
// flag guards against applying the transform twice.
type FactorTable struct {
	Frame  *dataframe.DataFrame[time.Time]
	scaled bool
}

// Scaled reports whether the table values are decimal returns
func (ft *FactorTable) Scaled() bool {
	return ft.scaled
}

// ScaleToDecimal divides every value by 100, converting percent returns to
// decimal returns. Returns ErrAlreadyScaled if called a second time.
func (ft *FactorTable) ScaleToDecimal() error {
	if ft.scaled {
		return ErrAlreadyScaled
	}

	for colIdx := range ft.Frame.Vals {
		for rowIdx := range ft.Frame.Vals[colIdx] {
			ft.Frame.Vals[colIdx][rowIdx] /= 100.0
		}
	}

	ft.scaled = true
	return nil
}

// LoadFactorCSV reads a Fama-French style monthly factor CSV. The first
// column is the month in YYYYMM form; remaining header cells name the
// factors. Unparseable values become NaN so missingness propagates rather
// than turning into zeros. The returned table is unscaled (percent units).
func LoadFactorCSV(r io.Reader) (*FactorTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	if len(header) < 2 {
		return nil, fmt.Errorf("%w: factor table needs a date column and at least one factor", ErrMissingField)
	}

	colNames := make([]string, len(header)-1)
	for ii, name := range header[1:] {
		colNames[ii] = strings.TrimSpace(name)
	}

	frame := &dataframe.DataFrame[time.Time]{
		Index:    []time.Time{},
		ColNames: colNames,
		Vals:     make([][]float64, len(colNames)),
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		period, err := time.Parse("200601", strings.TrimSpace(record[0]))
		if err != nil {
			log.Warn().Str("Row", record[0]).Msg("skipping factor row with unparseable month")
			continue
		}

		frame.Index = append(frame.Index, period)
		for colIdx := range colNames {
			val := math.NaN()
			if colIdx+1 < len(record) {
				if v, perr := strconv.ParseFloat(strings.TrimSpace(record[colIdx+1]), 64); perr == nil {
					val = v
				}
			}
			frame.Vals[colIdx] = append(frame.Vals[colIdx], val)
		}
	}

	return &FactorTable{Frame: frame}, nil
}

// LoadFactorFile loads a factor CSV from disk and scales it to decimal. This
// is the boundary where the divide-by-100 normalization happens; it is
// applied exactly once here and nowhere else.
func LoadFactorFile(path string) (*FactorTable, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	table, err := LoadFactorCSV(fh)
	if err != nil {
		return nil, err
	}

	if err := table.ScaleToDecimal(); err != nil {
		return nil, err
	}

	return table, nil
}
