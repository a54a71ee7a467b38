package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/dataset"
)

const snapshotSchema = `
	CREATE TABLE glaciers (
		wgms_id INTEGER PRIMARY KEY,
		name TEXT, political_unit TEXT, spec_location TEXT,
		latitude REAL, longitude REAL,
		prim_classific INTEGER, form INTEGER, frontal_chars INTEGER,
		lowest_elevation REAL, highest_elevation REAL,
		reference TEXT, spons_agency TEXT, remarks TEXT
	);
	CREATE TABLE mass_balance (wgms_id INTEGER, year INTEGER, annual_balance REAL);
	CREATE TABLE thickness_change (wgms_id INTEGER, year INTEGER, reference_year INTEGER, thickness_chg REAL);
	CREATE TABLE length (wgms_id INTEGER, year INTEGER, length REAL);
	CREATE TABLE area (wgms_id INTEGER, year INTEGER, area REAL);
`

// newSnapshot creates a throwaway SQLite file, applies the ETL schema plus the
// given inserts, and returns its path.
func newSnapshot(t *testing.T, inserts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wgms.db")
	handle, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer handle.Close()

	_, err = handle.Exec(snapshotSchema)
	require.NoError(t, err)
	for _, stmt := range inserts {
		_, err = handle.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	path := newSnapshot(t,
		`INSERT INTO glaciers VALUES
			(353, 'MER DE GLACE', 'FR', 'MONT BLANC', 45.87, 6.93, 5, 4, 1, 1400, 4200, 'Vincent, C.', 'LGGE', NULL),
			(394, 'RHONE', 'CH', NULL, 46.62, 8.40, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL)`,
		`INSERT INTO mass_balance VALUES (353, 1995, -890), (353, 1996, 120)`,
		`INSERT INTO thickness_change VALUES (353, 1960, 1950, -80)`,
		`INSERT INTO length VALUES (394, 1900, 10.2)`,
	)

	tables, err := LoadSQLite(context.Background(), path)
	require.NoError(t, err)

	t.Run("glaciers", func(t *testing.T) {
		require.Len(t, tables.Glaciers, 2)

		g := tables.Glaciers[0]
		assert.Equal(t, 353, g.ID)
		assert.Equal(t, "MER DE GLACE", g.Name)
		assert.Equal(t, "MONT BLANC", g.SpecificLocation)
		assert.Equal(t, dataset.Code(5), g.PrimaryClassification)
		require.NotNil(t, g.LowestElevation)
		assert.Equal(t, 1400.0, *g.LowestElevation)
		assert.Equal(t, "Vincent, C.", g.Reference)
		assert.Empty(t, g.Remarks)
	})

	t.Run("null attributes", func(t *testing.T) {
		g := tables.Glaciers[1]
		assert.Equal(t, dataset.CodeUnknown, g.PrimaryClassification)
		assert.Equal(t, dataset.CodeUnknown, g.Form)
		assert.Nil(t, g.LowestElevation)
		assert.Nil(t, g.HighestElevation)
		assert.Empty(t, g.SpecificLocation)
	})

	t.Run("series tables", func(t *testing.T) {
		require.Len(t, tables.MassBalance, 2)
		assert.Equal(t, dataset.SeriesPoint{GlacierID: 353, Year: 1995, Value: -890}, tables.MassBalance[0])

		require.Len(t, tables.ThicknessChange, 1)
		assert.Equal(t, 1950, tables.ThicknessChange[0].ReferenceYear)

		require.Len(t, tables.Length, 1)
		assert.Empty(t, tables.Area)
	})
}

func TestLoadSQLiteNullReferenceYear(t *testing.T) {
	path := newSnapshot(t,
		`INSERT INTO glaciers (wgms_id, latitude, longitude) VALUES (353, 45.87, 6.93)`,
		`INSERT INTO thickness_change VALUES (353, 1960, NULL, -80)`,
	)

	tables, err := LoadSQLite(context.Background(), path)
	require.NoError(t, err)

	// Degenerate interval: the measurement year stands in for the start.
	require.Len(t, tables.ThicknessChange, 1)
	assert.Equal(t, 1960, tables.ThicknessChange[0].ReferenceYear)
	assert.Equal(t, 1960, tables.ThicknessChange[0].Year)
}

func TestLoadSQLiteMissingJoinKey(t *testing.T) {
	t.Run("series row without wgms_id", func(t *testing.T) {
		path := newSnapshot(t,
			`INSERT INTO glaciers (wgms_id, latitude, longitude) VALUES (353, 45.87, 6.93)`,
			`INSERT INTO length VALUES (NULL, 1900, 10.2)`,
		)

		_, err := LoadSQLite(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing join key")
	})

	t.Run("series row without year", func(t *testing.T) {
		path := newSnapshot(t,
			`INSERT INTO glaciers (wgms_id, latitude, longitude) VALUES (353, 45.87, 6.93)`,
			`INSERT INTO area VALUES (353, NULL, 17.3)`,
		)

		_, err := LoadSQLite(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing join key")
	})
}

func TestLoadSQLiteMissingFile(t *testing.T) {
	_, err := LoadSQLite(context.Background(), filepath.Join(t.TempDir(), "missing", "wgms.db"))
	require.Error(t, err)
}
