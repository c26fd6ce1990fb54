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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidewater-research/factor-api/common"
)

func init() {
	// Tiingo API token
	viper.BindEnv("tiingo.token", "TIINGO_TOKEN")
	rootCmd.PersistentFlags().String("tiingo-token", "", "Tiingo API token")
	viper.BindPFlag("tiingo.token", rootCmd.PersistentFlags().Lookup("tiingo-token"))

	// Date range
	viper.BindEnv("range.start", "START_DATE")
	rootCmd.PersistentFlags().String("start", "2015-01-01", "Start of history to download (YYYY-MM-DD)")
	viper.BindPFlag("range.start", rootCmd.PersistentFlags().Lookup("start"))

	viper.BindEnv("range.end", "END_DATE")
	rootCmd.PersistentFlags().String("end", "", "End of history to download (YYYY-MM-DD); today when empty")
	viper.BindPFlag("range.end", rootCmd.PersistentFlags().Lookup("end"))

	// Logging configuration
	viper.BindEnv("log.level", "FACTOR_API_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.output", "FACTOR_API_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	rootCmd.PersistentFlags().Bool("log-pretty", true, "Print logs in human readable form")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))
}

var rootCmd = &cobra.Command{
	Use:     "factor-api",
	Version: common.CurrentVersion,
	Short:   "factor-api builds and evaluates cross-sectional trading factors",
	Long: `A research tool that builds ranking-based momentum factors from a panel of
asset prices and evaluates them against a benchmark multi-factor model via
OLS regression.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
