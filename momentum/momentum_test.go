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

package momentum_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tidewater-research/factor-api/dataframe"
	"github.com/tidewater-research/factor-api/momentum"
)

func testDates(n int) []time.Time {
	dates := make([]time.Time, n)
	for ii := range dates {
		dates[ii] = time.Date(2020, time.Month(1+ii), 28, 0, 0, 0, 0, time.UTC)
	}
	return dates
}

var _ = Describe("Momentum", func() {
	Describe("Score", func() {
		Context("with 14 months of prices for 2 assets", func() {
			var closes *dataframe.DataFrame[time.Time]

			BeforeEach(func() {
				growA := make([]float64, 14)
				growB := make([]float64, 14)
				for ii := range growA {
					growA[ii] = 100 * math.Pow(1.01, float64(ii))
					growB[ii] = 100 * math.Pow(1.03, float64(ii))
				}
				closes = &dataframe.DataFrame[time.Time]{
					Index:    testDates(14),
					ColNames: []string{"SLOW", "FAST"},
					Vals:     [][]float64{growA, growB},
				}
			})

			It("is missing during the lag+lookback warm-up", func() {
				score, err := momentum.Score(closes, 12, 1)
				Expect(err).To(BeNil())
				for rowIdx := 0; rowIdx < 13; rowIdx++ {
					Expect(math.IsNaN(score.Vals[0][rowIdx])).To(BeTrue())
					Expect(math.IsNaN(score.Vals[1][rowIdx])).To(BeTrue())
				}
			})

			It("computes close[t-lag]/close[t-lag-lookback] - 1", func() {
				score, err := momentum.Score(closes, 12, 1)
				Expect(err).To(BeNil())
				Expect(score.Vals[0][13]).To(BeNumerically("~", math.Pow(1.01, 12)-1, 1e-10))
				Expect(score.Vals[1][13]).To(BeNumerically("~", math.Pow(1.03, 12)-1, 1e-10))
			})

			It("propagates missing endpoint prices", func() {
				closes.Vals[0][12] = math.NaN()
				score, err := momentum.Score(closes, 12, 1)
				Expect(err).To(BeNil())
				Expect(math.IsNaN(score.Vals[0][13])).To(BeTrue())
				Expect(math.IsNaN(score.Vals[1][13])).To(BeFalse())
			})

			It("rejects a non-positive lookback", func() {
				_, err := momentum.Score(closes, 0, 1)
				Expect(err).To(MatchError(momentum.ErrInvalidWindow))
			})

			It("rejects a negative lag", func() {
				_, err := momentum.Score(closes, 12, -1)
				Expect(err).To(MatchError(momentum.ErrInvalidWindow))
			})
		})
	})

	Describe("Rank", func() {
		var score *dataframe.DataFrame[time.Time]

		BeforeEach(func() {
			score = &dataframe.DataFrame[time.Time]{
				Index:    testDates(1),
				ColNames: []string{"A", "B", "C", "D"},
				Vals:     [][]float64{{0.04}, {0.01}, {0.03}, {0.02}},
			}
		})

		It("assigns midpoint percentile ranks", func() {
			rank := momentum.Rank(score)
			Expect(rank.Vals[0][0]).To(BeNumerically("~", 0.875, 1e-12))
			Expect(rank.Vals[1][0]).To(BeNumerically("~", 0.125, 1e-12))
			Expect(rank.Vals[2][0]).To(BeNumerically("~", 0.625, 1e-12))
			Expect(rank.Vals[3][0]).To(BeNumerically("~", 0.375, 1e-12))
		})

		It("gives tied scores the mean rank", func() {
			score.Vals[2][0] = 0.02 // tie C with D
			rank := momentum.Rank(score)
			Expect(rank.Vals[2][0]).To(BeNumerically("~", 0.5, 1e-12))
			Expect(rank.Vals[3][0]).To(BeNumerically("~", 0.5, 1e-12))
		})

		It("is invariant under positive scaling of a row", func() {
			rank := momentum.Rank(score)
			for colIdx := range score.Vals {
				score.Vals[colIdx][0] *= 42.0
			}
			scaled := momentum.Rank(score)
			for colIdx := range rank.Vals {
				Expect(scaled.Vals[colIdx][0]).To(Equal(rank.Vals[colIdx][0]))
			}
		})

		It("excludes missing scores from the denominator", func() {
			score.Vals[0][0] = math.NaN()
			rank := momentum.Rank(score)
			Expect(math.IsNaN(rank.Vals[0][0])).To(BeTrue())
			// three ranked assets: B < D < C
			Expect(rank.Vals[1][0]).To(BeNumerically("~", 0.5/3.0, 1e-12))
			Expect(rank.Vals[3][0]).To(BeNumerically("~", 1.5/3.0, 1e-12))
			Expect(rank.Vals[2][0]).To(BeNumerically("~", 2.5/3.0, 1e-12))
		})
	})

	Describe("Select", func() {
		var rank *dataframe.DataFrame[time.Time]

		BeforeEach(func() {
			rank = &dataframe.DataFrame[time.Time]{
				Index:    testDates(2),
				ColNames: []string{"A", "B", "C", "D"},
				Vals: [][]float64{
					{0.875, 0.875},
					{0.125, 0.125},
					{0.625, 0.625},
					{0.375, 0.375},
				},
			}
		})

		It("partitions exactly 2k ranked assets into long and short", func() {
			selection, err := momentum.Select(rank, 2)
			Expect(err).To(BeNil())
			Expect(selection.Longs).To(HaveLen(2))
			Expect(selection.Shorts).To(HaveLen(2))
			Expect(selection.Longs[0].Asset).To(Equal("A"))
			Expect(selection.Longs[1].Asset).To(Equal("C"))
			Expect(selection.Shorts[0].Asset).To(Equal("B"))
			Expect(selection.Shorts[1].Asset).To(Equal("D"))
		})

		It("uses the most recent fully populated row", func() {
			rank.Vals[0][1] = math.NaN()
			rank.Vals[2][1] = math.NaN()
			selection, err := momentum.Select(rank, 2)
			Expect(err).To(BeNil())
			Expect(selection.Date).To(Equal(rank.Index[0]))
		})

		It("breaks rank ties by asset identifier ascending", func() {
			for colIdx := range rank.Vals {
				rank.Vals[colIdx][1] = 0.5
			}
			selection, err := momentum.Select(rank, 1)
			Expect(err).To(BeNil())
			Expect(selection.Longs[0].Asset).To(Equal("A"))
			Expect(selection.Shorts[0].Asset).To(Equal("A"))
		})

		It("errors when no row has enough ranked assets", func() {
			_, err := momentum.Select(rank, 3)
			Expect(err).To(MatchError(momentum.ErrInsufficientData))
		})

		It("errors on a non-positive position count", func() {
			_, err := momentum.Select(rank, 0)
			Expect(err).To(MatchError(momentum.ErrInsufficientData))
		})
	})
})
