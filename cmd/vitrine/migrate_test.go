// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package main

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/vitrine/pkg/errutil"
)

// fakeMigrator records calls instead of touching a database.
type fakeMigrator struct {
	version uint
	dirty   bool
	pending []uint
	upErr   error

	ups    int
	downs  int
	forced []int
	closed bool
}

func (m *fakeMigrator) Up() error {
	m.ups++
	return m.upErr
}

func (m *fakeMigrator) Down() error {
	m.downs++
	return nil
}

func (m *fakeMigrator) Version() (uint, bool, error) {
	return m.version, m.dirty, nil
}

func (m *fakeMigrator) Force(version int) error {
	m.forced = append(m.forced, version)
	return nil
}

func (m *fakeMigrator) PendingMigrations() ([]uint, error) {
	return m.pending, nil
}

func (m *fakeMigrator) AppliedMigrations() ([]uint, error) {
	return nil, nil
}

func (m *fakeMigrator) Close() error {
	m.closed = true
	return nil
}

func migratorDeps(m *fakeMigrator) *Deps {
	return &Deps{
		NewMigrator: func(string) (Migrator, error) { return m, nil },
	}
}

func TestMigrate_Up(t *testing.T) {
	validEnv(t)

	t.Run("applies pending migrations", func(t *testing.T) {
		m := &fakeMigrator{pending: []uint{2, 3}}
		output, err := execute(t, migratorDeps(m), "migrate", "up")
		require.NoError(t, err)

		assert.Equal(t, 1, m.ups)
		assert.True(t, m.closed)
		assert.Contains(t, output, "Applying 2 migration(s)")
	})

	t.Run("bare migrate also applies", func(t *testing.T) {
		m := &fakeMigrator{pending: []uint{1}}
		_, err := execute(t, migratorDeps(m), "migrate")
		require.NoError(t, err)
		assert.Equal(t, 1, m.ups)
	})

	t.Run("nothing pending", func(t *testing.T) {
		m := &fakeMigrator{version: 3}
		output, err := execute(t, migratorDeps(m), "migrate", "up")
		require.NoError(t, err)

		assert.Zero(t, m.ups)
		assert.Contains(t, output, "up to date")
	})

	t.Run("failure keeps its code", func(t *testing.T) {
		m := &fakeMigrator{pending: []uint{1}, upErr: oops.Code("MIGRATION_UP_FAILED").Errorf("boom")}
		_, err := execute(t, migratorDeps(m), "migrate", "up")
		errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
		assert.True(t, m.closed)
	})
}

func TestMigrate_OpenFailure(t *testing.T) {
	validEnv(t)
	deps := &Deps{
		NewMigrator: func(string) (Migrator, error) {
			return nil, oops.Code("MIGRATION_INIT_FAILED").Wrap(errors.New("connection refused"))
		},
	}

	_, err := execute(t, deps, "migrate", "status")
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestMigrate_Down(t *testing.T) {
	validEnv(t)

	t.Run("requires confirmation", func(t *testing.T) {
		opened := false
		deps := &Deps{NewMigrator: func(string) (Migrator, error) {
			opened = true
			return &fakeMigrator{}, nil
		}}

		_, err := execute(t, deps, "migrate", "down")
		errutil.AssertErrorCode(t, err, "MIGRATION_NOT_CONFIRMED")
		assert.False(t, opened)
	})

	t.Run("confirmed", func(t *testing.T) {
		m := &fakeMigrator{version: 3}
		_, err := execute(t, migratorDeps(m), "migrate", "down", "--yes")
		require.NoError(t, err)
		assert.Equal(t, 1, m.downs)
	})
}

func TestMigrate_Status(t *testing.T) {
	validEnv(t)

	tests := []struct {
		name     string
		migrator *fakeMigrator
		want     []string
	}{
		{
			name:     "fresh database",
			migrator: &fakeMigrator{pending: []uint{1, 2, 3}},
			want:     []string{"Current version: none", "Pending: 3", "000001_users", "000003_web_sessions"},
		},
		{
			name:     "partially migrated",
			migrator: &fakeMigrator{version: 2, pending: []uint{3}},
			want:     []string{"Current version: 000002_catalog", "Pending: 1", "000003_web_sessions"},
		},
		{
			name:     "dirty",
			migrator: &fakeMigrator{version: 2, dirty: true},
			want:     []string{"DIRTY", "Pending: none"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, migratorDeps(tt.migrator), "migrate", "status")
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestMigrate_Force(t *testing.T) {
	validEnv(t)

	m := &fakeMigrator{}
	output, err := execute(t, migratorDeps(m), "migrate", "force", "2")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, m.forced)
	assert.Contains(t, output, "Forced schema version to 2")

	_, err = execute(t, migratorDeps(m), "migrate", "force", "two")
	errutil.AssertErrorCode(t, err, "INVALID_VERSION")
	assert.Len(t, m.forced, 1)
}

func TestParseForceVersion(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantErrCode string
	}{
		{name: "valid integer", input: "3", wantVersion: 3},
		{name: "zero is valid", input: "0", wantVersion: 0},
		{name: "surrounding whitespace is trimmed", input: "  42 ", wantVersion: 42},
		{name: "non-numeric", input: "abc", wantErrCode: "INVALID_VERSION"},
		{name: "trailing garbage", input: "3abc", wantErrCode: "INVALID_VERSION"},
		{name: "float", input: "1.5", wantErrCode: "INVALID_VERSION"},
		{name: "negative", input: "-1", wantErrCode: "INVALID_VERSION"},
		{name: "empty", input: "", wantErrCode: "INVALID_VERSION"},
		{name: "whitespace only", input: "   ", wantErrCode: "INVALID_VERSION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, err := parseForceVersion(tt.input)
			if tt.wantErrCode != "" {
				errutil.AssertErrorCode(t, err, tt.wantErrCode)
				assert.Zero(t, version)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}

func TestMigrationLabel(t *testing.T) {
	assert.Equal(t, "000001_users", migrationLabel(1))
	assert.Equal(t, "999", migrationLabel(999))
}
