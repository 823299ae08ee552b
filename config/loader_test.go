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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(LoaderOptions{ConfigDir: dir, DotenvPath: ""})
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.NotEmpty(t, cfg.Transport.ListenAddr)
}

func TestLoad_ReadsEnvironmentSpecificFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "staging.yaml"), []byte(`
environment: staging
store:
  driver: postgres
`), 0644))

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "staging"})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestLoad_EnvironmentOverrideWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(`
store:
  driver: postgres
`), 0644))

	os.Setenv("SAS_VERIFY_STORE_DRIVER", "memory")
	defer os.Unsetenv("SAS_VERIFY_STORE_DRIVER")

	cfg, err := Load(LoaderOptions{ConfigDir: dir})
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestMustLoad_FallsBackSilentlyOnUnparsableFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("not: [valid yaml"), 0644))

	assert.NotPanics(t, func() {
		MustLoad(LoaderOptions{ConfigDir: dir})
	})
}
