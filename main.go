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

package main

import (
	"github.com/spf13/viper"
	"github.com/tidewater-research/factor-api/cmd"
)

func configureViper() {
	viper.SetConfigName("factor-api")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/etc/factor-api/")
	viper.AddConfigPath("$HOME/.config/factor-api")
	viper.AddConfigPath(".")

	// a config file is optional; flags and environment variables suffice
	_ = viper.ReadInConfig()
}

func main() {
	configureViper()
	cmd.Execute()
}
