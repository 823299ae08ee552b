// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteEnvVars(t *testing.T) {
	os.Setenv("SAS_VERIFY_TEST_VAR", "resolved")
	defer os.Unsetenv("SAS_VERIFY_TEST_VAR")

	assert.Equal(t, "resolved", SubstituteEnvVars("${SAS_VERIFY_TEST_VAR}"))
	assert.Equal(t, "fallback", SubstituteEnvVars("${SAS_VERIFY_UNSET_VAR:fallback}"))
	assert.Equal(t, "", SubstituteEnvVars("${SAS_VERIFY_UNSET_VAR}"))
}

func TestSubstituteEnvVarsInConfig(t *testing.T) {
	os.Setenv("SAS_VERIFY_TEST_DSN", "postgres://resolved")
	defer os.Unsetenv("SAS_VERIFY_TEST_DSN")

	cfg := &Config{Store: &StoreConfig{DSN: "${SAS_VERIFY_TEST_DSN}"}}
	SubstituteEnvVarsInConfig(cfg)

	assert.Equal(t, "postgres://resolved", cfg.Store.DSN)
}

func TestGetEnvironment(t *testing.T) {
	os.Unsetenv("SAGE_ENV")
	os.Unsetenv("ENVIRONMENT")
	assert.Equal(t, "development", GetEnvironment())

	os.Setenv("SAGE_ENV", "Production")
	defer os.Unsetenv("SAGE_ENV")
	assert.Equal(t, "production", GetEnvironment())
	assert.True(t, IsProduction())
	assert.False(t, IsDevelopment())
}
