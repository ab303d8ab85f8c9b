// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/vitrine/pkg/errutil"
)

// fakeMigrate implements migrateIface for testing.
type fakeMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	version        uint
	versionErr     error
	dirty          bool
	forceErr       error
	forced         int
	closeSourceErr error
	closeDBErr     error
}

func (m *fakeMigrate) Up() error                    { return m.upErr }
func (m *fakeMigrate) Down() error                  { return m.downErr }
func (m *fakeMigrate) Steps(_ int) error            { return m.stepsErr }
func (m *fakeMigrate) Version() (uint, bool, error) { return m.version, m.dirty, m.versionErr }
func (m *fakeMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDBErr }

func (m *fakeMigrate) Force(v int) error {
	m.forced = v
	return m.forceErr
}

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/vitrine":   "pgx5://u:p@db:5432/vitrine",
		"postgresql://u:p@db:5432/vitrine": "pgx5://u:p@db:5432/vitrine",
		"pgx5://u:p@db:5432/vitrine":       "pgx5://u:p@db:5432/vitrine",
	}
	for in, want := range tests {
		assert.Equal(t, want, MigrateURL(in), in)
	}
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/testdb")
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")

	_, err = NewMigrator("postgresql://localhost:1/testdb")
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
	assert.NotContains(t, err.Error(), "unknown driver", "postgresql:// should be rewritten to pgx5://")
}

func TestMigrator_Operations(t *testing.T) {
	boom := errors.New("database locked")

	tests := []struct {
		name     string
		fake     *fakeMigrate
		call     func(*Migrator) error
		wantCode string
	}{
		{name: "up", fake: &fakeMigrate{}, call: (*Migrator).Up},
		{name: "up no change", fake: &fakeMigrate{upErr: migrate.ErrNoChange}, call: (*Migrator).Up},
		{name: "up error", fake: &fakeMigrate{upErr: boom}, call: (*Migrator).Up, wantCode: "MIGRATION_UP_FAILED"},
		{name: "down", fake: &fakeMigrate{}, call: (*Migrator).Down},
		{name: "down no change", fake: &fakeMigrate{downErr: migrate.ErrNoChange}, call: (*Migrator).Down},
		{name: "down error", fake: &fakeMigrate{downErr: boom}, call: (*Migrator).Down, wantCode: "MIGRATION_DOWN_FAILED"},
		{
			name: "steps no change",
			fake: &fakeMigrate{stepsErr: migrate.ErrNoChange},
			call: func(m *Migrator) error { return m.Steps(0) },
		},
		{
			name:     "steps error",
			fake:     &fakeMigrate{stepsErr: boom},
			call:     func(m *Migrator) error { return m.Steps(-1) },
			wantCode: "MIGRATION_STEPS_FAILED",
		},
		{
			name:     "force negative",
			fake:     &fakeMigrate{},
			call:     func(m *Migrator) error { return m.Force(-1) },
			wantCode: "INVALID_VERSION",
		},
		{
			name:     "force error",
			fake:     &fakeMigrate{forceErr: boom},
			call:     func(m *Migrator) error { return m.Force(2) },
			wantCode: "MIGRATION_FORCE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(&Migrator{m: tt.fake})
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestMigrator_Force(t *testing.T) {
	fake := &fakeMigrate{}
	require.NoError(t, (&Migrator{m: fake}).Force(2))
	assert.Equal(t, 2, fake.forced)
}

func TestMigrator_Version(t *testing.T) {
	v, dirty, err := (&Migrator{m: &fakeMigrate{version: 2, dirty: true}}).Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.True(t, dirty)

	v, dirty, err = (&Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}).Version()
	require.NoError(t, err, "no version yet is version 0")
	assert.Zero(t, v)
	assert.False(t, dirty)

	_, _, err = (&Migrator{m: &fakeMigrate{versionErr: errors.New("connection lost")}}).Version()
	errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name      string
		fake      *fakeMigrate
		component string
	}{
		{name: "clean", fake: &fakeMigrate{}},
		{name: "source", fake: &fakeMigrate{closeSourceErr: errors.New("source close failed")}, component: "source"},
		{name: "database", fake: &fakeMigrate{closeDBErr: errors.New("db close failed")}, component: "database"},
		{
			name:      "both",
			fake:      &fakeMigrate{closeSourceErr: errors.New("source close failed"), closeDBErr: errors.New("db close failed")},
			component: "both",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Migrator{m: tt.fake}).Close()
			if tt.component == "" {
				require.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			errutil.AssertErrorContext(t, err, "component", tt.component)
		})
	}
}

func TestMigrator_PendingAndApplied(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeMigrate
		pending []uint
		applied []uint
	}{
		{name: "fresh database", fake: &fakeMigrate{versionErr: migrate.ErrNilVersion}, pending: []uint{1, 2, 3}},
		{name: "partially migrated", fake: &fakeMigrate{version: 1}, pending: []uint{2, 3}, applied: []uint{1}},
		{name: "at latest", fake: &fakeMigrate{version: 3}, applied: []uint{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: tt.fake}
			pending, err := m.PendingMigrations()
			require.NoError(t, err)
			assert.Equal(t, tt.pending, pending)

			applied, err := m.AppliedMigrations()
			require.NoError(t, err)
			assert.Equal(t, tt.applied, applied)
		})
	}
}

func TestMigrator_PendingAndApplied_VersionError(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: errors.New("connection lost")}}

	_, err := m.PendingMigrations()
	errutil.AssertErrorContext(t, err, "operation", "get pending migrations")

	_, err = m.AppliedMigrations()
	errutil.AssertErrorContext(t, err, "operation", "get applied migrations")
}

func TestMigrationName(t *testing.T) {
	tests := []struct {
		version uint
		want    string
	}{
		{1, "000001_users"},
		{2, "000002_catalog"},
		{3, "000003_web_sessions"},
		{99, ""},
	}
	for _, tt := range tests {
		got, err := MigrationName(tt.version)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
