package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres schema for zone structure, subscribers and addresses.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStructureQuery := `
	CREATE TABLE IF NOT EXISTS structure (
		id SERIAL PRIMARY KEY,
		zustellbereich TEXT NOT NULL,
		bezirk TEXT,
		depot_plz TEXT,
		depot_ort TEXT,
		depot_strasse TEXT,
		depot_hausnummer TEXT,
		depot_hausnummernzusatz TEXT
	);
	`

	createAbonentenQuery := `
	CREATE TABLE IF NOT EXISTS abonenten (
		id SERIAL PRIMARY KEY,
		abonummer TEXT,
		objekt TEXT,
		name TEXT,
		plz TEXT,
		ort TEXT,
		strasse TEXT,
		hausnr TEXT,
		rayon TEXT
	);
	`

	createAdressenQuery := `
	CREATE TABLE IF NOT EXISTS adressen (
		id SERIAL PRIMARY KEY,
		plz TEXT,
		ort TEXT,
		ortsteil TEXT,
		street TEXT,
		hsnr TEXT,
		adz TEXT,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION
	);
	`

	createIndexQueries := []string{
		`CREATE INDEX IF NOT EXISTS idx_structure_zustellbereich ON structure(zustellbereich);`,
		`CREATE INDEX IF NOT EXISTS idx_abonenten_rayon ON abonenten(rayon);`,
		`CREATE INDEX IF NOT EXISTS idx_adressen_lookup ON adressen(plz, street, hsnr);`,
	}

	statements := append([]string{
		createStructureQuery,
		createAbonentenQuery,
		createAdressenQuery,
	}, createIndexQueries...)

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StructureSeed struct {
	Zustellbereich         string `json:"zustellbereich"`
	Bezirk                 string `json:"bezirk"`
	DepotPLZ               string `json:"depot_plz"`
	DepotOrt               string `json:"depot_ort"`
	DepotStrasse           string `json:"depot_strasse"`
	DepotHausnummer        string `json:"depot_hausnummer"`
	DepotHausnummernzusatz string `json:"depot_hausnummernzusatz"`
}

type SubscriberSeed struct {
	Abonummer string `json:"abonummer"`
	Objekt    string `json:"objekt"`
	Name      string `json:"name"`
	PLZ       string `json:"plz"`
	Ort       string `json:"ort"`
	Strasse   string `json:"strasse"`
	Hausnr    string `json:"hausnr"`
	Rayon     string `json:"rayon"`
}

type AddressSeed struct {
	PLZ      string   `json:"plz"`
	Ort      string   `json:"ort"`
	Ortsteil string   `json:"ortsteil"`
	Street   string   `json:"street"`
	Hsnr     string   `json:"hsnr"`
	Adz      string   `json:"adz"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

type ZoneSeed struct {
	Structure []StructureSeed  `json:"structure"`
	Abonenten []SubscriberSeed `json:"abonenten"`
	Adressen  []AddressSeed    `json:"adressen"`
}

// ParseSeed reads and validates a zone fixture.
func ParseSeed(b []byte) (ZoneSeed, error) {
	var data ZoneSeed
	if err := json.Unmarshal(b, &data); err != nil {
		return ZoneSeed{}, fmt.Errorf("seed zones: parse json: %w", err)
	}

	for i, s := range data.Structure {
		if strings.TrimSpace(s.Zustellbereich) == "" {
			return ZoneSeed{}, fmt.Errorf("seed zones: structure at index %d: zustellbereich cannot be empty", i+1)
		}
	}
	for i, a := range data.Abonenten {
		if strings.TrimSpace(a.Rayon) == "" {
			return ZoneSeed{}, fmt.Errorf("seed zones: subscriber at index %d: rayon cannot be empty", i+1)
		}
	}
	for i, a := range data.Adressen {
		if (a.Lat == nil) != (a.Lon == nil) {
			return ZoneSeed{}, fmt.Errorf("seed zones: address at index %d: lat and lon must be set together", i+1)
		}
	}

	return data, nil
}

// Populate the database with zone data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed zones: read %q: %w", jsonPath, err)
	}

	data, err := ParseSeed(bytes)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed zones: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"structure", "abonenten", "adressen"} {
		if _, err := tx.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY;"); err != nil {
			return fmt.Errorf("seed zones: truncate %s: %w", table, err)
		}
	}

	for i, s := range data.Structure {
		_, err := tx.Exec(`
		INSERT INTO structure (
			zustellbereich, bezirk, depot_plz, depot_ort,
			depot_strasse, depot_hausnummer, depot_hausnummernzusatz
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
		`, s.Zustellbereich, s.Bezirk, s.DepotPLZ, s.DepotOrt, s.DepotStrasse, s.DepotHausnummer, s.DepotHausnummernzusatz)
		if err != nil {
			return fmt.Errorf("seed zones: insert structure #%d: %w", i+1, err)
		}
	}

	for i, a := range data.Abonenten {
		_, err := tx.Exec(`
		INSERT INTO abonenten (abonummer, objekt, name, plz, ort, strasse, hausnr, rayon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`, a.Abonummer, a.Objekt, a.Name, a.PLZ, a.Ort, a.Strasse, a.Hausnr, a.Rayon)
		if err != nil {
			return fmt.Errorf("seed zones: insert subscriber #%d: %w", i+1, err)
		}
	}

	for i, a := range data.Adressen {
		_, err := tx.Exec(`
		INSERT INTO adressen (plz, ort, ortsteil, street, hsnr, adz, lat, lon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`, a.PLZ, a.Ort, a.Ortsteil, a.Street, a.Hsnr, a.Adz, a.Lat, a.Lon)
		if err != nil {
			return fmt.Errorf("seed zones: insert address #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed zones: commit tx: %w", err)
	}

	return nil
}
