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

package regression_test

import (
	"math"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tidewater-research/factor-api/dataframe"
	"github.com/tidewater-research/factor-api/regression"
)

func periodIndex(startYear int, n int) []time.Time {
	dates := make([]time.Time, n)
	for ii := range dates {
		dates[ii] = time.Date(startYear, time.Month(1+ii%12), 1, 0, 0, 0, 0, time.UTC).AddDate(ii/12, 0, 0)
	}
	return dates
}

var _ = Describe("Regress", func() {
	Context("with synthetic data generated as UMD = 0.5*Mkt-RF + noise", func() {
		var umd *dataframe.DataFrame[time.Time]
		var factors *dataframe.DataFrame[time.Time]

		BeforeEach(func() {
			const n = 240
			rng := rand.New(rand.NewSource(42))

			index := periodIndex(2000, n)
			mkt := make([]float64, n)
			smb := make([]float64, n)
			umdVals := make([]float64, n)
			for ii := 0; ii < n; ii++ {
				mkt[ii] = (rng.Float64() - 0.5) * 0.10
				smb[ii] = (rng.Float64() - 0.5) * 0.06
				noise := (rng.Float64() - 0.5) * 0.002
				umdVals[ii] = 0.5*mkt[ii] + noise
			}

			umd = &dataframe.DataFrame[time.Time]{
				Index:    index,
				ColNames: []string{"UMD"},
				Vals:     [][]float64{umdVals},
			}
			factors = &dataframe.DataFrame[time.Time]{
				Index:    index,
				ColNames: []string{"Mkt-RF", "SMB"},
				Vals:     [][]float64{mkt, smb},
			}
		})

		It("recovers the market coefficient", func() {
			result, err := regression.Regress(umd, factors)
			Expect(err).To(BeNil())
			coef, ok := result.Coefficient("Mkt-RF")
			Expect(ok).To(BeTrue())
			Expect(coef).To(BeNumerically("~", 0.5, 0.01))
		})

		It("fits a near-zero intercept and SMB loading", func() {
			result, err := regression.Regress(umd, factors)
			Expect(err).To(BeNil())
			intercept, ok := result.Coefficient(regression.InterceptName)
			Expect(ok).To(BeTrue())
			Expect(intercept).To(BeNumerically("~", 0.0, 0.001))
			smbCoef, _ := result.Coefficient("SMB")
			Expect(smbCoef).To(BeNumerically("~", 0.0, 0.05))
		})

		It("reports a high R2 and the observation count", func() {
			result, err := regression.Regress(umd, factors)
			Expect(err).To(BeNil())
			Expect(result.R2).To(BeNumerically(">", 0.95))
			Expect(result.NObs).To(Equal(240))
			Expect(result.Residuals).To(HaveLen(240))
		})

		It("drops periods with missing factor values from the fit", func() {
			factors.Vals[0][10] = math.NaN()
			result, err := regression.Regress(umd, factors)
			Expect(err).To(BeNil())
			Expect(result.NObs).To(Equal(239))
		})

		It("regresses only the requested columns", func() {
			result, err := regression.Regress(umd, factors, "Mkt-RF")
			Expect(err).To(BeNil())
			Expect(result.VarNames).To(Equal([]string{regression.InterceptName, "Mkt-RF"}))
		})

		It("rejects unknown regressors", func() {
			_, err := regression.Regress(umd, factors, "HML")
			Expect(err).ToNot(BeNil())
		})
	})

	Context("with disjoint date ranges", func() {
		It("errors with empty overlap", func() {
			umd := &dataframe.DataFrame[time.Time]{
				Index:    periodIndex(2010, 24),
				ColNames: []string{"UMD"},
				Vals:     [][]float64{make([]float64, 24)},
			}
			factors := &dataframe.DataFrame[time.Time]{
				Index:    periodIndex(2015, 72),
				ColNames: []string{"Mkt-RF"},
				Vals:     [][]float64{make([]float64, 72)},
			}

			_, err := regression.Regress(umd, factors)
			Expect(err).To(MatchError(dataframe.ErrEmptyOverlap))
		})
	})

	Context("with a rank-deficient design", func() {
		It("errors when a factor column is constant", func() {
			n := 36
			index := periodIndex(2018, n)
			rng := rand.New(rand.NewSource(7))

			umdVals := make([]float64, n)
			flat := make([]float64, n)
			for ii := range umdVals {
				umdVals[ii] = (rng.Float64() - 0.5) * 0.05
				flat[ii] = 0.02
			}

			umd := &dataframe.DataFrame[time.Time]{
				Index:    index,
				ColNames: []string{"UMD"},
				Vals:     [][]float64{umdVals},
			}
			factors := &dataframe.DataFrame[time.Time]{
				Index:    index,
				ColNames: []string{"Mkt-RF"},
				Vals:     [][]float64{flat},
			}

			_, err := regression.Regress(umd, factors)
			Expect(err).To(MatchError(regression.ErrSingularDesign))
		})

		It("errors when there are fewer observations than regressors", func() {
			n := 2
			index := periodIndex(2018, n)

			umd := &dataframe.DataFrame[time.Time]{
				Index:    index,
				ColNames: []string{"UMD"},
				Vals:     [][]float64{{0.01, 0.02}},
			}
			factors := &dataframe.DataFrame[time.Time]{
				Index:    index,
				ColNames: []string{"Mkt-RF", "SMB"},
				Vals:     [][]float64{{0.1, 0.2}, {0.3, 0.4}},
			}

			_, err := regression.Regress(umd, factors)
			Expect(err).To(MatchError(regression.ErrSingularDesign))
		})
	})
})
