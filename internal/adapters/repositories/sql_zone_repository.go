package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/platform/obs"
)

// Postgres-backed implementation of the ZoneRepository port.
// A zone (Zustellbereich) groups Bezirke; its stops are the subscribers of
// those Bezirke, geocoded through the adressen table.
type SQLZoneRepository struct{ DB *sql.DB }

func NewSQLZoneRepository(db *sql.DB) *SQLZoneRepository {
	return &SQLZoneRepository{DB: db}
}

var houseNumberPattern = regexp.MustCompile(`^(\d+)\s*([A-Za-z\-]*)`)

// splitHouseNumber separates "12 a" or "12a" into number and suffix.
// Values without a leading number are returned whole with an empty suffix.
func splitHouseNumber(v string) (number, suffix string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ""
	}
	m := houseNumberPattern.FindStringSubmatch(v)
	if m == nil {
		return v, ""
	}
	return m[1], m[2]
}

type depotRow struct {
	plz, ort, street, number, suffix string
}

type subscriberRow struct {
	plz, ort, street, houseNumber, name, objekt string
}

// StopsForZone returns the depot followed by every subscriber of the zone.
// An unknown zone yields an empty list. Stops without an address match keep
// nil coordinates.
func (r *SQLZoneRepository) StopsForZone(ctx context.Context, zoneID string) (_ []domain.Stop, err error) {
	defer obs.Time(ctx, "zones.db.StopsForZone")(&err)

	if r.DB == nil {
		return nil, errors.New("sql zone repository: DB is nil")
	}

	bezirke, err := r.bezirke(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if len(bezirke) == 0 {
		return []domain.Stop{}, nil
	}

	depot, err := r.depot(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	subs, err := r.subscribers(ctx, bezirke)
	if err != nil {
		return nil, err
	}

	addrStmt, err := r.DB.PrepareContext(ctx, `
	SELECT lat, lon
	FROM adressen
	WHERE plz = $1 AND ortsteil = $2 AND street = $3 AND hsnr = $4 AND COALESCE(adz, '') = $5
	ORDER BY id
	LIMIT 1;
	`)
	if err != nil {
		return nil, fmt.Errorf("stops for zone: prepare address lookup: %w", err)
	}
	defer addrStmt.Close()

	stops := make([]domain.Stop, 0, len(subs)+1)

	if depot != nil {
		depotStmt, err := r.DB.PrepareContext(ctx, `
		SELECT lat, lon
		FROM adressen
		WHERE plz = $1 AND ort = $2 AND street = $3 AND hsnr = $4 AND COALESCE(adz, '') = $5
		ORDER BY id
		LIMIT 1;
		`)
		if err != nil {
			return nil, fmt.Errorf("stops for zone: prepare depot lookup: %w", err)
		}
		defer depotStmt.Close()

		lat, lon, err := lookupCoordinates(ctx, depotStmt, depot.plz, depot.ort, depot.street, depot.number, depot.suffix)
		if err != nil {
			return nil, fmt.Errorf("stops for zone: depot coordinates: %w", err)
		}

		stops = append(stops, domain.Stop{
			Name:             "Depot",
			SubscriptionType: "DEPOT",
			PostalCode:       depot.plz,
			Locality:         depot.ort,
			Street:           depot.street,
			HouseNumber:      strings.TrimSpace(depot.number + " " + depot.suffix),
			Lat:              lat,
			Lon:              lon,
		})
	}

	for _, s := range subs {
		number, suffix := splitHouseNumber(s.houseNumber)
		lat, lon, err := lookupCoordinates(ctx, addrStmt, s.plz, s.ort, s.street, number, suffix)
		if err != nil {
			return nil, fmt.Errorf("stops for zone: address %q %q: %w", s.street, s.houseNumber, err)
		}

		stops = append(stops, domain.Stop{
			Name:             s.name,
			SubscriptionType: s.objekt,
			PostalCode:       s.plz,
			Locality:         s.ort,
			Street:           s.street,
			HouseNumber:      strings.TrimSpace(s.houseNumber),
			Lat:              lat,
			Lon:              lon,
		})
	}

	return stops, nil
}

// Bezirke of a zone in first-seen order.
func (r *SQLZoneRepository) bezirke(ctx context.Context, zoneID string) ([]string, error) {
	query := `
	SELECT bezirk
	FROM structure
	WHERE zustellbereich = $1 AND bezirk IS NOT NULL
	GROUP BY bezirk
	ORDER BY MIN(id);
	`
	rows, err := r.DB.QueryContext(ctx, query, zoneID)
	if err != nil {
		return nil, fmt.Errorf("stops for zone: query structure table: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, 8)
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("stops for zone: scan bezirk: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stops for zone: bezirk iteration: %w", err)
	}

	return out, nil
}

// Depot address of the first structure row of the zone, nil if absent.
func (r *SQLZoneRepository) depot(ctx context.Context, zoneID string) (*depotRow, error) {
	query := `
	SELECT
		depot_plz,
		depot_ort,
		depot_strasse,
		depot_hausnummer,
		depot_hausnummernzusatz
	FROM structure
	WHERE zustellbereich = $1
	ORDER BY id
	LIMIT 1;
	`
	var plz, ort, street, number, suffix sql.NullString
	err := r.DB.QueryRowContext(ctx, query, zoneID).Scan(&plz, &ort, &street, &number, &suffix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stops for zone: query depot: %w", err)
	}

	return &depotRow{
		plz:    strings.TrimSpace(plz.String),
		ort:    strings.TrimSpace(ort.String),
		street: strings.TrimSpace(street.String),
		number: strings.TrimSpace(number.String),
		suffix: strings.TrimSpace(suffix.String),
	}, nil
}

// Subscribers of the given Bezirke, grouped by Bezirk in the given order.
func (r *SQLZoneRepository) subscribers(ctx context.Context, bezirke []string) ([]subscriberRow, error) {
	query := `
	SELECT plz, ort, strasse, hausnr, name, objekt
	FROM abonenten
	WHERE rayon = ANY($1::text[])
	ORDER BY array_position($1::text[], rayon), id;
	`
	rows, err := r.DB.QueryContext(ctx, query, bezirke)
	if err != nil {
		return nil, fmt.Errorf("stops for zone: query abonenten table: %w", err)
	}
	defer rows.Close()

	out := make([]subscriberRow, 0, 64)
	for rows.Next() {
		var plz, ort, street, hausnr, name, objekt sql.NullString
		if err := rows.Scan(&plz, &ort, &street, &hausnr, &name, &objekt); err != nil {
			return nil, fmt.Errorf("stops for zone: scan subscriber: %w", err)
		}
		out = append(out, subscriberRow{
			plz:         plz.String,
			ort:         ort.String,
			street:      street.String,
			houseNumber: hausnr.String,
			name:        name.String,
			objekt:      objekt.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stops for zone: subscriber iteration: %w", err)
	}

	return out, nil
}

func lookupCoordinates(ctx context.Context, stmt *sql.Stmt, args ...any) (lat, lon *float64, err error) {
	var la, lo sql.NullFloat64
	err = stmt.QueryRowContext(ctx, args...).Scan(&la, &lo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if !la.Valid || !lo.Valid {
		return nil, nil, nil
	}
	return &la.Float64, &lo.Float64, nil
}
