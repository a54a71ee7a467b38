package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/dataset"
)

const pgGlaciersSQL = `
    SELECT wgms_id, name, political_unit, spec_location, latitude, longitude,
           prim_classific, form, frontal_chars,
           lowest_elevation, highest_elevation,
           reference, spons_agency, remarks
    FROM wgms.glaciers
    ORDER BY wgms_id
`

// LoadPostgres reads the five tables from the Postgres database the offline
// ETL populates. The pool only lives for the duration of the load.
func LoadPostgres(ctx context.Context, databaseURL string) (dataset.Tables, error) {
	var t dataset.Tables

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return t, fmt.Errorf("connect dataset database: %w", err)
	}
	defer pool.Close()

	t.Glaciers, err = loadPGGlaciers(ctx, pool)
	if err != nil {
		return t, err
	}

	t.MassBalance, err = loadPGSeries(ctx, pool, "wgms.mass_balance", "annual_balance", false)
	if err != nil {
		return t, err
	}
	t.ThicknessChange, err = loadPGSeries(ctx, pool, "wgms.thickness_change", "thickness_chg", true)
	if err != nil {
		return t, err
	}
	t.Length, err = loadPGSeries(ctx, pool, "wgms.length", "length", false)
	if err != nil {
		return t, err
	}
	t.Area, err = loadPGSeries(ctx, pool, "wgms.area", "area", false)
	if err != nil {
		return t, err
	}

	return t, nil
}

func loadPGGlaciers(ctx context.Context, pool *pgxpool.Pool) ([]dataset.Glacier, error) {
	rows, err := pool.Query(ctx, pgGlaciersSQL)
	if err != nil {
		return nil, fmt.Errorf("query glaciers: %w", err)
	}
	defer rows.Close()

	glaciers := make([]dataset.Glacier, 0)
	for rows.Next() {
		var (
			g                             dataset.Glacier
			id                            *int64
			name, unit, location          *string
			classification, form, frontal *int64
			reference, sponsor, remarks   *string
		)
		if err := rows.Scan(
			&id, &name, &unit, &location,
			&g.Latitude, &g.Longitude,
			&classification, &form, &frontal,
			&g.LowestElevation, &g.HighestElevation,
			&reference, &sponsor, &remarks,
		); err != nil {
			return nil, fmt.Errorf("scan glacier row: %w", err)
		}
		if id == nil {
			return nil, fmt.Errorf("glacier row %d: missing wgms_id", len(glaciers))
		}

		g.ID = int(*id)
		g.Name = stringOrEmpty(name)
		g.PoliticalUnit = stringOrEmpty(unit)
		g.SpecificLocation = stringOrEmpty(location)
		g.PrimaryClassification = ptrCode(classification)
		g.Form = ptrCode(form)
		g.FrontalCharacteristics = ptrCode(frontal)
		g.Reference = stringOrEmpty(reference)
		g.SponsoringAgency = stringOrEmpty(sponsor)
		g.Remarks = stringOrEmpty(remarks)

		glaciers = append(glaciers, g)
	}
	return glaciers, rows.Err()
}

func loadPGSeries(ctx context.Context, pool *pgxpool.Pool, table, valueColumn string, withReference bool) ([]dataset.SeriesPoint, error) {
	query := fmt.Sprintf(`SELECT wgms_id, year, %s FROM %s`, valueColumn, table)
	if withReference {
		query = fmt.Sprintf(`SELECT wgms_id, year, reference_year, %s FROM %s`, valueColumn, table)
	}

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	points := make([]dataset.SeriesPoint, 0)
	for rows.Next() {
		var (
			p         dataset.SeriesPoint
			id, year  *int64
			reference *int64
		)

		if withReference {
			err = rows.Scan(&id, &year, &reference, &p.Value)
		} else {
			err = rows.Scan(&id, &year, &p.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		if id == nil || year == nil {
			return nil, fmt.Errorf("%s row %d: missing join key", table, len(points))
		}

		p.GlacierID = int(*id)
		p.Year = int(*year)
		if reference != nil {
			p.ReferenceYear = int(*reference)
		} else if withReference {
			p.ReferenceYear = p.Year
		}

		points = append(points, p)
	}
	return points, rows.Err()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptrCode(v *int64) dataset.Code {
	if v == nil {
		return dataset.CodeUnknown
	}
	return dataset.Code(*v)
}
