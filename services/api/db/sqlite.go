package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/dataset"
)

const sqliteGlaciersSQL = `
    SELECT wgms_id, name, political_unit, spec_location, latitude, longitude,
           prim_classific, form, frontal_chars,
           lowest_elevation, highest_elevation,
           reference, spons_agency, remarks
    FROM glaciers
    ORDER BY wgms_id
`

// LoadSQLite reads the five tables from the SQLite snapshot the offline ETL
// ships with the application.
func LoadSQLite(ctx context.Context, path string) (dataset.Tables, error) {
	var t dataset.Tables

	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return t, fmt.Errorf("open dataset snapshot: %w", err)
	}
	defer handle.Close()

	if err := handle.PingContext(ctx); err != nil {
		return t, fmt.Errorf("open dataset snapshot: %w", err)
	}

	t.Glaciers, err = loadSQLiteGlaciers(ctx, handle)
	if err != nil {
		return t, err
	}

	t.MassBalance, err = loadSQLiteSeries(ctx, handle, "mass_balance", "annual_balance", false)
	if err != nil {
		return t, err
	}
	t.ThicknessChange, err = loadSQLiteSeries(ctx, handle, "thickness_change", "thickness_chg", true)
	if err != nil {
		return t, err
	}
	t.Length, err = loadSQLiteSeries(ctx, handle, "length", "length", false)
	if err != nil {
		return t, err
	}
	t.Area, err = loadSQLiteSeries(ctx, handle, "area", "area", false)
	if err != nil {
		return t, err
	}

	return t, nil
}

func loadSQLiteGlaciers(ctx context.Context, handle *sql.DB) ([]dataset.Glacier, error) {
	rows, err := handle.QueryContext(ctx, sqliteGlaciersSQL)
	if err != nil {
		return nil, fmt.Errorf("query glaciers: %w", err)
	}
	defer rows.Close()

	glaciers := make([]dataset.Glacier, 0)
	for rows.Next() {
		var (
			g                              dataset.Glacier
			id                             sql.NullInt64
			name, unit, location           sql.NullString
			classification, form, frontal  sql.NullInt64
			lowest, highest                sql.NullFloat64
			reference, sponsor, remarks    sql.NullString
		)
		if err := rows.Scan(
			&id, &name, &unit, &location,
			&g.Latitude, &g.Longitude,
			&classification, &form, &frontal,
			&lowest, &highest,
			&reference, &sponsor, &remarks,
		); err != nil {
			return nil, fmt.Errorf("scan glacier row: %w", err)
		}
		if !id.Valid {
			return nil, fmt.Errorf("glacier row %d: missing wgms_id", len(glaciers))
		}

		g.ID = int(id.Int64)
		g.Name = name.String
		g.PoliticalUnit = unit.String
		g.SpecificLocation = location.String
		g.PrimaryClassification = nullCode(classification)
		g.Form = nullCode(form)
		g.FrontalCharacteristics = nullCode(frontal)
		g.LowestElevation = nullFloat(lowest)
		g.HighestElevation = nullFloat(highest)
		g.Reference = reference.String
		g.SponsoringAgency = sponsor.String
		g.Remarks = remarks.String

		glaciers = append(glaciers, g)
	}
	return glaciers, rows.Err()
}

// loadSQLiteSeries reads one per-metric table. withReference selects the
// thickness-change shape, which carries the interval start year.
func loadSQLiteSeries(ctx context.Context, handle *sql.DB, table, valueColumn string, withReference bool) ([]dataset.SeriesPoint, error) {
	query := fmt.Sprintf(`SELECT wgms_id, year, %q FROM %q`, valueColumn, table)
	if withReference {
		query = fmt.Sprintf(`SELECT wgms_id, year, reference_year, %q FROM %q`, valueColumn, table)
	}

	rows, err := handle.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	points := make([]dataset.SeriesPoint, 0)
	for rows.Next() {
		var (
			p         dataset.SeriesPoint
			id, year  sql.NullInt64
			reference sql.NullInt64
		)

		if withReference {
			err = rows.Scan(&id, &year, &reference, &p.Value)
		} else {
			err = rows.Scan(&id, &year, &p.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		if !id.Valid || !year.Valid {
			return nil, fmt.Errorf("%s row %d: missing join key", table, len(points))
		}

		p.GlacierID = int(id.Int64)
		p.Year = int(year.Int64)
		if reference.Valid {
			p.ReferenceYear = int(reference.Int64)
		} else if withReference {
			// Degenerate interval; renders as a marker at the measurement year.
			p.ReferenceYear = p.Year
		}

		points = append(points, p)
	}
	return points, rows.Err()
}

func nullCode(v sql.NullInt64) dataset.Code {
	if !v.Valid {
		return dataset.CodeUnknown
	}
	return dataset.Code(v.Int64)
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
