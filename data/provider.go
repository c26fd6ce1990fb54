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
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/tidewater-research/factor-api/dataframe"
)

// Provider retrieves a price panel for a set of assets over a date range.
// There is a single fetch entry point regardless of whether the caller thinks
// in absolute dates or a relative period; relative periods are resolved by
// Manager before the provider is called.
type Provider interface {
	Fetch(ctx context.Context, assets []string, begin, end time.Time, frequency dataframe.Frequency) (*Panel, error)
}

// Manager composes a Provider with an in-memory LRU cache of downloaded
// panels. Begin, End and Frequency describe the next request.
type Manager struct {
	Begin     time.Time
	End       time.Time
	Frequency dataframe.Frequency

	provider Provider
	cache    *lru.Cache
}

// NewManager creates a manager for the given provider. Cache size is read
// from the `cache.local_size` setting.
func NewManager(provider Provider) *Manager {
	viper.SetDefault("cache.local_size", 64)
	cache, err := lru.New(viper.GetInt("cache.local_size"))
	if err != nil {
		log.Panic().Err(err).Msg("could not create LRU cache")
	}

	return &Manager{
		Frequency: dataframe.Monthly,
		provider:  provider,
		cache:     cache,
	}
}

// SetRelativePeriod sets the request range to the last n months ending today
func (m *Manager) SetRelativePeriod(months int) {
	m.End = time.Now()
	m.Begin = m.End.AddDate(0, -months, 0)
}

// GetPanel fetches a price panel for the requested assets at the manager's
// current date range and frequency, consulting the cache first
func (m *Manager) GetPanel(ctx context.Context, assets ...string) (*Panel, error) {
	if len(assets) == 0 {
		return nil, ErrNoAssets
	}

	if m.Begin.After(m.End) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidTimeRange,
			m.Begin.Format("2006-01-02"), m.End.Format("2006-01-02"))
	}

	key := fmt.Sprintf("%s:%s:%s:%s", strings.Join(assets, ","),
		m.Begin.Format("2006-01-02"), m.End.Format("2006-01-02"), m.Frequency)
	if cached, ok := m.cache.Get(key); ok {
		log.Debug().Str("Key", key).Msg("panel cache hit")
		return cached.(*Panel), nil
	}

	panel, err := m.provider.Fetch(ctx, assets, m.Begin, m.End, m.Frequency)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("Dates", len(panel.Dates)).Strs("Fields", panel.Fields()).Msg("downloaded panel from provider")
	m.cache.Add(key, panel)
	return panel, nil
}
