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

type AddrConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

type AuthConfig struct {
	JWTSecret          string   `yaml:"jwt_secret"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type DataSourceConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// CategoryConfig defines one consent category. Required categories always
// resolve to accepted regardless of what the client submits.
type CategoryConfig struct {
	Name     string `yaml:"name"`
	Required bool   `yaml:"required"`
}

// ConsentConfig holds the consent banner and cookie lifecycle settings.
type ConsentConfig struct {
	CookieDomain     string           `yaml:"cookie_domain"`
	ExpirationOffset string           `yaml:"expiration_offset"`
	Version          int              `yaml:"version"`
	Theme            string           `yaml:"theme"`
	Categories       []CategoryConfig `yaml:"categories"`
}

type Config struct {
	Addr       AddrConfig       `yaml:"addr"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	DataSource DataSourceConfig `yaml:"datasource"`
	Consent    ConsentConfig    `yaml:"consent"`
}
