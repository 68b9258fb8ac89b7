/*
SPDX-FileCopyrightText: Copyright (c) 2026 NVIDIA CORPORATION & AFFILIATES. All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnv(t *testing.T) {
	testCases := []struct {
		name         string
		envKey       string
		envValue     string
		defaultValue string
		expected     string
	}{
		{
			name:         "env var set",
			envKey:       "TEST_ENV_VAR",
			envValue:     "test_value",
			defaultValue: "default",
			expected:     "test_value",
		},
		{
			name:         "env var not set",
			envKey:       "TEST_NONEXISTENT_VAR",
			envValue:     "",
			defaultValue: "default",
			expected:     "default",
		},
		{
			name:         "env var empty string",
			envKey:       "TEST_EMPTY_VAR",
			envValue:     "",
			defaultValue: "default",
			expected:     "default",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.envKey, tc.envValue)
				defer os.Unsetenv(tc.envKey)
			}

			result := GetEnv(tc.envKey, tc.defaultValue)
			if result != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, result)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	testCases := []struct {
		name         string
		envKey       string
		envValue     string
		defaultValue int
		expected     int
	}{
		{
			name:         "valid integer",
			envKey:       "TEST_INT_VAR",
			envValue:     "42",
			defaultValue: 10,
			expected:     42,
		},
		{
			name:         "invalid integer",
			envKey:       "TEST_INVALID_INT",
			envValue:     "not_a_number",
			defaultValue: 10,
			expected:     10,
		},
		{
			name:         "env var not set",
			envKey:       "TEST_NONEXISTENT_INT",
			envValue:     "",
			defaultValue: 10,
			expected:     10,
		},
		{
			name:         "negative integer",
			envKey:       "TEST_NEGATIVE_INT",
			envValue:     "-5",
			defaultValue: 10,
			expected:     -5,
		},
		{
			name:         "zero",
			envKey:       "TEST_ZERO_INT",
			envValue:     "0",
			defaultValue: 10,
			expected:     0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.envKey, tc.envValue)
				defer os.Unsetenv(tc.envKey)
			}

			result := GetEnvInt(tc.envKey, tc.defaultValue)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	testCases := []struct {
		name         string
		envValue     string
		defaultValue bool
		expected     bool
	}{
		{name: "true value", envValue: "true", defaultValue: false, expected: true},
		{name: "false value", envValue: "false", defaultValue: true, expected: false},
		{name: "unset falls back", envValue: "", defaultValue: true, expected: true},
		{name: "garbage falls back", envValue: "nope", defaultValue: false, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tc.envValue != "" {
				os.Setenv(key, tc.envValue)
				defer os.Unsetenv(key)
			}

			result := GetEnvBool(key, tc.defaultValue)
			if result != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestGetEnvOrConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")
	configContent := `postgres_password: "config_password"
redis_password: "config_redis_pass"
other_value: "test"`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	testCases := []struct {
		name         string
		envKey       string
		envValue     string
		configKey    string
		configPath   string
		defaultValue string
		expected     string
	}{
		{
			name:         "env var takes priority",
			envKey:       "TEST_PASSWORD",
			envValue:     "env_password",
			configKey:    "postgres_password",
			configPath:   configPath,
			defaultValue: "default",
			expected:     "env_password",
		},
		{
			name:         "fallback to config file",
			envKey:       "TEST_EMPTY_PASSWORD",
			envValue:     "",
			configKey:    "postgres_password",
			configPath:   configPath,
			defaultValue: "default",
			expected:     "config_password",
		},
		{
			name:         "fallback to default",
			envKey:       "TEST_NONEXISTENT",
			envValue:     "",
			configKey:    "nonexistent_key",
			configPath:   configPath,
			defaultValue: "default",
			expected:     "default",
		},
		{
			name:         "no config file",
			envKey:       "TEST_NO_CONFIG",
			envValue:     "",
			configKey:    "postgres_password",
			configPath:   "",
			defaultValue: "default",
			expected:     "default",
		},
		{
			name:         "invalid config file path",
			envKey:       "TEST_INVALID_CONFIG",
			envValue:     "",
			configKey:    "postgres_password",
			configPath:   "/nonexistent/path/config.yaml",
			defaultValue: "default",
			expected:     "default",
		},
		{
			name:         "read other key from config",
			envKey:       "TEST_OTHER",
			envValue:     "",
			configKey:    "other_value",
			configPath:   configPath,
			defaultValue: "default",
			expected:     "test",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.envKey, tc.envValue)
				defer os.Unsetenv(tc.envKey)
			}
			if tc.configPath != "" {
				os.Setenv("DEALPIPE_CONFIG_FILE", tc.configPath)
				defer os.Unsetenv("DEALPIPE_CONFIG_FILE")
			}

			result := GetEnvOrConfig(tc.envKey, tc.configKey, tc.defaultValue)
			if result != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, result)
			}
		})
	}
}

func TestGetEnvOrConfigWithInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")
	invalidContent := `invalid: yaml: content: [[[`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create invalid config file: %v", err)
	}

	os.Setenv("DEALPIPE_CONFIG_FILE", configPath)
	defer os.Unsetenv("DEALPIPE_CONFIG_FILE")

	result := GetEnvOrConfig("TEST_KEY", "postgres_password", "default")
	if result != "default" {
		t.Errorf("Expected default value for invalid YAML, got %s", result)
	}
}
