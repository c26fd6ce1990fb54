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

package data_test

import (
	"context"
	"math"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tidewater-research/factor-api/data"
	"github.com/tidewater-research/factor-api/dataframe"
)

const aaplJSON = `[
  {"date":"2021-01-29T00:00:00.000Z","close":131.96,"high":136.74,"low":130.21,"open":135.83,"volume":177180600,"adjClose":130.1,"adjHigh":134.8,"adjLow":128.4,"adjOpen":133.9,"adjVolume":177180600,"divCash":0.0,"splitFactor":1.0},
  {"date":"2021-02-26T00:00:00.000Z","close":121.26,"high":124.85,"low":121.20,"open":122.59,"volume":164560400,"adjClose":119.7,"adjHigh":123.2,"adjLow":119.6,"adjOpen":121.0,"adjVolume":164560400,"divCash":0.0,"splitFactor":1.0}
]`

const msftJSON = `[
  {"date":"2021-01-29T00:00:00.000Z","close":231.96,"high":235.18,"low":231.29,"open":235.06,"volume":32935600,"adjClose":229.2,"adjHigh":232.4,"adjLow":228.5,"adjOpen":232.2,"adjVolume":32935600,"divCash":0.0,"splitFactor":1.0}
]`

var _ = Describe("Tiingo", func() {
	var ctx context.Context
	var provider data.Provider
	var begin, end time.Time

	BeforeEach(func() {
		ctx = context.Background()
		provider = data.NewTiingo("TEST_TOKEN")
		begin = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC)

		httpmock.Activate()
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	Context("when both assets download successfully", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/AAPL/prices`,
				httpmock.NewStringResponder(200, aaplJSON))
			httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/MSFT/prices`,
				httpmock.NewStringResponder(200, msftJSON))
		})

		It("assembles a panel over the union of dates", func() {
			panel, err := provider.Fetch(ctx, []string{"AAPL", "MSFT"}, begin, end, dataframe.Monthly)
			Expect(err).To(BeNil())
			Expect(panel.Dates).To(HaveLen(2))
			Expect(panel.Dates[0]).To(Equal(time.Date(2021, 1, 29, 0, 0, 0, 0, time.UTC)))
			Expect(panel.Dates[1]).To(Equal(time.Date(2021, 2, 26, 0, 0, 0, 0, time.UTC)))
			Expect(panel.Assets).To(Equal([]string{"AAPL", "MSFT"}))
		})

		It("fills fields from the quote payload", func() {
			panel, err := provider.Fetch(ctx, []string{"AAPL", "MSFT"}, begin, end, dataframe.Monthly)
			Expect(err).To(BeNil())
			Expect(panel.Vals[data.FieldClose][0][0]).To(BeNumerically("~", 131.96, 1e-9))
			Expect(panel.Vals[data.FieldAdjClose][0][1]).To(BeNumerically("~", 119.7, 1e-9))
			Expect(panel.Vals[data.FieldVolume][1][0]).To(BeNumerically("~", 32935600, 1e-3))
		})

		It("leaves dates without a quote missing", func() {
			panel, err := provider.Fetch(ctx, []string{"AAPL", "MSFT"}, begin, end, dataframe.Monthly)
			Expect(err).To(BeNil())
			// MSFT has no February quote
			Expect(math.IsNaN(panel.Vals[data.FieldClose][1][1])).To(BeTrue())
		})
	})

	Context("when one asset fails", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/AAPL/prices`,
				httpmock.NewStringResponder(200, aaplJSON))
			httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/tiingo/daily/BAD/prices`,
				httpmock.NewStringResponder(404, "not found"))
		})

		It("keeps the failed asset as an all-NaN column", func() {
			panel, err := provider.Fetch(ctx, []string{"AAPL", "BAD"}, begin, end, dataframe.Monthly)
			Expect(err).To(BeNil())
			Expect(panel.Assets).To(Equal([]string{"AAPL", "BAD"}))
			for rowIdx := range panel.Dates {
				Expect(math.IsNaN(panel.Vals[data.FieldClose][1][rowIdx])).To(BeTrue())
			}
		})
	})

	Context("when every asset fails", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", `=~^https://api\.tiingo\.com/`,
				httpmock.NewStringResponder(500, "server error"))
		})

		It("errors with provider failed", func() {
			_, err := provider.Fetch(ctx, []string{"AAPL", "MSFT"}, begin, end, dataframe.Monthly)
			Expect(err).To(MatchError(data.ErrProviderFailed))
		})
	})

	Context("with an inverted date range", func() {
		It("errors with invalid time range", func() {
			_, err := provider.Fetch(ctx, []string{"AAPL"}, end, begin, dataframe.Monthly)
			Expect(err).To(MatchError(data.ErrInvalidTimeRange))
		})
	})
})
