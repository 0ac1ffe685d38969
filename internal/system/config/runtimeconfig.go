/*
 * Copyright (c) 2025, the OpenConsent project.
 *
 * The OpenConsent project licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import "sync"

// Runtime holds the runtime configuration for the consent service. Home is the
// installation root; archive exports land under <Home>/var/cookie-consent.
type Runtime struct {
	Home   string
	Config Config
}

var (
	runtimeConfig *Runtime
	once          sync.Once
)

// InitializeRuntime initializes the Runtime configuration.
func InitializeRuntime(home string, config *Config) error {

	once.Do(func() {
		runtimeConfig = &Runtime{
			Home:   home,
			Config: *config,
		}
	})

	return nil
}

// GetRuntime returns the Runtime configuration.
func GetRuntime() *Runtime {

	if runtimeConfig == nil {
		panic("runtime configuration is not initialized")
	}
	return runtimeConfig
}

// OverrideRuntime replaces the runtime configuration. Intended for tests.
func OverrideRuntime(home string, conf Config) {
	runtimeConfig = &Runtime{
		Home:   home,
		Config: conf,
	}
}
