/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"token-ledger-go/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func Load() (*models.Config, error) {
	var (
		connMaxLifetime, connMaxIdleTime, pingTimeout, busyTimeout time.Duration
		readTimeout, writeTimeout, shutdownTimeout                 time.Duration
		tokenTTL, retryBackoff, reconcileInterval                  time.Duration
	)

	for _, d := range []struct {
		key          string
		target       *time.Duration
		defaultValue time.Duration
	}{
		{"DB_CONN_MAX_LIFETIME", &connMaxLifetime, 5 * time.Minute},
		{"DB_CONN_MAX_IDLE_TIME", &connMaxIdleTime, 30 * time.Second},
		{"DB_PING_TIMEOUT", &pingTimeout, 5 * time.Second},
		{"DB_BUSY_TIMEOUT", &busyTimeout, 5 * time.Second},
		{"SERVER_READ_TIMEOUT", &readTimeout, 10 * time.Second},
		{"SERVER_WRITE_TIMEOUT", &writeTimeout, 15 * time.Second},
		{"SERVER_SHUTDOWN_TIMEOUT", &shutdownTimeout, 30 * time.Second},
		{"JWT_TTL", &tokenTTL, 24 * time.Hour},
		{"LEDGER_RETRY_BACKOFF", &retryBackoff, 25 * time.Millisecond},
		{"RECONCILE_INTERVAL", &reconcileInterval, 10 * time.Minute},
	} {
		value, err := getEnvDuration(d.key, d.defaultValue)
		if err != nil {
			return nil, err
		}
		*d.target = value
	}

	driver := strings.ToLower(getEnvString("DATABASE_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (want %s or %s)", driver, DriverSQLite, DriverPostgres)
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Driver:          driver,
			Path:            getEnvString("DATABASE_PATH", "ledger.db"),
			Url:             getEnvString("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			BusyTimeout:     busyTimeout,
		},
		Server: models.ServerConfig{
			Addr:            getEnvString("SERVER_ADDR", ":8080"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Auth: models.AuthConfig{
			Secret:   getEnvString("JWT_SECRET", ""),
			Issuer:   getEnvString("JWT_ISSUER", "token-ledger"),
			TokenTTL: tokenTTL,
		},
		Ledger: models.LedgerConfig{
			EconomyFile:  getEnvString("ECONOMY_FILE", "economy.yaml"),
			MaxRetries:   getEnvInt("LEDGER_MAX_RETRIES", 3),
			RetryBackoff: retryBackoff,
		},
		Reconciler: models.ReconcilerConfig{
			Enabled:     getEnvBool("RECONCILE_ENABLED", true),
			Interval:    reconcileInterval,
			Concurrency: getEnvInt("RECONCILE_CONCURRENCY", 4),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvStringSlice splits a comma separated list, dropping empty items
func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
