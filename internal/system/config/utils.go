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

import (
	"fmt"
	"os"
	"path"

	"github.com/openconsent/cookie-consent-service/internal/system/constants"
	"gopkg.in/yaml.v2"
)

// LoadConfig reads the YAML configuration file relative to the installation
// home, expands environment variable references, and validates the result.
func LoadConfig(home, filePath string) (*Config, error) {
	file, err := os.ReadFile(path.Join(home, filePath))
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(file))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the consent block for values the core relies on.
func Validate(cfg *Config) error {
	if cfg.Consent.Theme == "" {
		cfg.Consent.Theme = constants.ThemeLight
	}
	if !constants.AllowedThemes[cfg.Consent.Theme] {
		return fmt.Errorf("invalid theme %q: allowed values are light, dark, auto", cfg.Consent.Theme)
	}
	if cfg.Consent.ExpirationOffset == "" {
		return fmt.Errorf("consent.expiration_offset is required")
	}
	if cfg.Consent.Version < 1 {
		return fmt.Errorf("consent.version must be a positive integer, got %d", cfg.Consent.Version)
	}
	seen := map[string]bool{}
	for _, cat := range cfg.Consent.Categories {
		if cat.Name == "" {
			return fmt.Errorf("consent.categories entries must have a name")
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate consent category %q", cat.Name)
		}
		seen[cat.Name] = true
	}
	return nil
}
