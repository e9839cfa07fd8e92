// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package store

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanlelis-27/amesco-plus-be/pkg/errutil"
)

// fakeMigrate implements migrateIface.
type fakeMigrate struct {
	upErr, downErr, stepsErr, forceErr error
	version                            uint
	dirty                              bool
	versionErr                         error
	closeSourceErr, closeDBErr         error

	steps []int
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.stepsErr
}
func (f *fakeMigrate) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Force(int) error              { return f.forceErr }
func (f *fakeMigrate) Close() (error, error)        { return f.closeSourceErr, f.closeDBErr }

func TestDriverURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@h:5432/db":   "pgx5://u:p@h:5432/db",
		"postgresql://u:p@h:5432/db": "pgx5://u:p@h:5432/db",
		"pgx5://u:p@h:5432/db":       "pgx5://u:p@h:5432/db",
		"badscheme://h/db":           "badscheme://h/db",
	}
	for in, want := range tests {
		assert.Equal(t, want, driverURL(in), in)
	}
}

func TestNewMigratorRejectsUnknownScheme(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/testdb")
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestMigratorOperations(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		fake     *fakeMigrate
		run      func(*Migrator) error
		wantCode string
	}{
		{"up", &fakeMigrate{}, (*Migrator).Up, ""},
		{"up no change", &fakeMigrate{upErr: migrate.ErrNoChange}, (*Migrator).Up, ""},
		{"up error", &fakeMigrate{upErr: boom}, (*Migrator).Up, "MIGRATION_UP_FAILED"},
		{"down", &fakeMigrate{}, (*Migrator).Down, ""},
		{"down no change", &fakeMigrate{downErr: migrate.ErrNoChange}, (*Migrator).Down, ""},
		{"down error", &fakeMigrate{downErr: boom}, (*Migrator).Down, "MIGRATION_DOWN_FAILED"},
		{"steps", &fakeMigrate{}, func(m *Migrator) error { return m.Steps(1) }, ""},
		{"steps error", &fakeMigrate{stepsErr: boom}, func(m *Migrator) error { return m.Steps(-1) }, "MIGRATION_STEPS_FAILED"},
		{"force", &fakeMigrate{}, func(m *Migrator) error { return m.Force(2) }, ""},
		{"force negative", &fakeMigrate{}, func(m *Migrator) error { return m.Force(-1) }, "INVALID_VERSION"},
		{"force error", &fakeMigrate{forceErr: boom}, func(m *Migrator) error { return m.Force(2) }, "MIGRATION_FORCE_FAILED"},
		{"close", &fakeMigrate{}, (*Migrator).Close, ""},
		{"close source error", &fakeMigrate{closeSourceErr: boom}, (*Migrator).Close, "MIGRATION_CLOSE_FAILED"},
		{"close both errors", &fakeMigrate{closeSourceErr: boom, closeDBErr: boom}, (*Migrator).Close, "MIGRATION_CLOSE_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(&Migrator{m: tt.fake})
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestMigratorStepsZeroIsNoOp(t *testing.T) {
	fake := &fakeMigrate{}
	require.NoError(t, (&Migrator{m: fake}).Steps(0))
	assert.Empty(t, fake.steps)
}

func TestMigratorVersion(t *testing.T) {
	t.Run("nil version is zero", func(t *testing.T) {
		v, dirty, err := (&Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}).Version()
		require.NoError(t, err)
		assert.Zero(t, v)
		assert.False(t, dirty)
	})

	t.Run("dirty", func(t *testing.T) {
		v, dirty, err := (&Migrator{m: &fakeMigrate{version: 3, dirty: true}}).Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), v)
		assert.True(t, dirty)
	})

	t.Run("error", func(t *testing.T) {
		_, _, err := (&Migrator{m: &fakeMigrate{versionErr: errors.New("boom")}}).Version()
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigratorStatus(t *testing.T) {
	st, err := (&Migrator{m: &fakeMigrate{version: 2}}).Status()
	require.NoError(t, err)

	assert.Equal(t, uint(2), st.Current)
	require.Len(t, st.Applied, 2)
	assert.Equal(t, "000001_create_users", st.Applied[0].Name)
	assert.Equal(t, "000002_create_memberships", st.Applied[1].Name)
	require.Len(t, st.Pending, 2)
	assert.Equal(t, uint(3), st.Pending[0].Version)
	assert.Equal(t, uint(4), st.Pending[1].Version)
}

func TestListMigrationsSkipsStrayFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_b.up.sql":   {},
		"migrations/000002_b.down.sql": {},
		"migrations/000001_a.up.sql":   {},
		"migrations/.gitkeep":          {},
		"migrations/notes.up.sql":      {},
	}
	got, err := listMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Migration{{Version: 1, Name: "000001_a"}, {Version: 2, Name: "000002_b"}}, got)
}

func TestMigrationName(t *testing.T) {
	name, err := MigrationName(4)
	require.NoError(t, err)
	assert.Equal(t, "000004_create_points", name)

	name, err = MigrationName(999)
	require.NoError(t, err)
	assert.Empty(t, name)
}
