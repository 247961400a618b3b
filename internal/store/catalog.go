// Package store persists the chemical catalog shown in the lab shelf.
// SQLite is the default backend; Postgres is supported through pgx.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"chemlab/internal/pubchem"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrNotFound is returned when no chemical has the requested CID.
	ErrNotFound = errors.New("chemical not found")
	// ErrExists is returned when adding a CID that is already stored.
	ErrExists = errors.New("chemical already exists")
	// ErrInvalidCategory is returned for a category outside Categories.
	ErrInvalidCategory = errors.New("invalid category")
)

// Categories are the shelves of the lab, in display order.
var Categories = []string{"liquids", "acids", "bases", "salts", "indicators", "solids", "gases", "ions"}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// EmptyShelves returns every category mapped to an empty list.
func EmptyShelves() map[string][]Chemical {
	out := make(map[string][]Chemical, len(Categories))
	for _, c := range Categories {
		out[c] = []Chemical{}
	}
	return out
}

// displayFormula is the formula shown on the shelf label.
func displayFormula(formula, name string) string {
	return pubchem.FormatFormula(formula, name)
}

// Chemical is one catalog row.
type Chemical struct {
	CID             int64     `json:"cid"`
	Name            string    `json:"name"`
	Formula         string    `json:"formula"`
	MolecularWeight float64   `json:"molecular_weight"`
	Category        string    `json:"category"`
	IUPACName       string    `json:"iupac_name"`
	SMILES          string    `json:"smiles"`
	Display         string    `json:"display"`
	CreatedAt       time.Time `json:"created_at"`
}

const schema = `CREATE TABLE IF NOT EXISTS chemicals (
	cid BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	formula TEXT NOT NULL DEFAULT '',
	molecular_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	category TEXT NOT NULL,
	iupac_name TEXT NOT NULL DEFAULT '',
	smiles TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL
)`

const categoryIndex = `CREATE INDEX IF NOT EXISTS idx_chemicals_category ON chemicals(category)`

// Catalog is a SQL-backed chemical catalog. It is safe for concurrent use.
type Catalog struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// Open connects to the catalog and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("catalog dsn is required")
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		db, err = openSQLite(dsn, logger)
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c := &Catalog{db: db, driver: driver, logger: logger}
	if err := c.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Catalog opened", zap.String("driver", driver))
	return c, nil
}

func openSQLite(path string, logger *zap.Logger) (*sql.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Debug("Failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Debug("Failed to set sqlite journal_mode=WAL", zap.Error(err))
	}
	return db, nil
}

func (c *Catalog) initialize(ctx context.Context) error {
	for _, stmt := range []string{schema, categoryIndex} {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Close closes the database handle.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (c *Catalog) rebind(query string) string {
	if c.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Add stores a chemical. It returns ErrExists when the CID is taken.
func (c *Catalog) Add(ctx context.Context, chem Chemical) (Chemical, error) {
	if chem.CID <= 0 {
		return Chemical{}, fmt.Errorf("invalid cid %d", chem.CID)
	}
	if strings.TrimSpace(chem.Name) == "" {
		return Chemical{}, fmt.Errorf("chemical name is required")
	}
	if !ValidCategory(chem.Category) {
		return Chemical{}, fmt.Errorf("%w: %q", ErrInvalidCategory, chem.Category)
	}
	if chem.CreatedAt.IsZero() {
		chem.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	res, err := c.db.ExecContext(ctx, c.rebind(`INSERT INTO chemicals
		(cid, name, formula, molecular_weight, category, iupac_name, smiles, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cid) DO NOTHING`),
		chem.CID, chem.Name, chem.Formula, chem.MolecularWeight, chem.Category,
		chem.IUPACName, chem.SMILES, chem.CreatedAt.Unix())
	if err != nil {
		return Chemical{}, fmt.Errorf("failed to insert chemical: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Chemical{}, ErrExists
	}

	chem.Display = displayFormula(chem.Formula, chem.Name)
	c.logger.Debug("Chemical added", zap.Int64("cid", chem.CID), zap.String("category", chem.Category))
	return chem, nil
}

// Get returns the chemical with the given CID.
func (c *Catalog) Get(ctx context.Context, cid int64) (Chemical, error) {
	row := c.db.QueryRowContext(ctx, c.rebind(`SELECT cid, name, formula, molecular_weight,
		category, iupac_name, smiles, created_at FROM chemicals WHERE cid = ?`), cid)

	chem, err := scanChemical(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Chemical{}, ErrNotFound
	}
	if err != nil {
		return Chemical{}, fmt.Errorf("failed to get chemical: %w", err)
	}
	return chem, nil
}

// Exists reports whether the CID is already stored.
func (c *Catalog) Exists(ctx context.Context, cid int64) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, c.rebind(`SELECT 1 FROM chemicals WHERE cid = ?`), cid).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check chemical: %w", err)
	}
}

// Shelves returns every chemical grouped by category. All categories are
// present, empty ones as empty lists. Rows with unknown categories are skipped.
func (c *Catalog) Shelves(ctx context.Context) (map[string][]Chemical, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT cid, name, formula, molecular_weight,
		category, iupac_name, smiles, created_at FROM chemicals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chemicals: %w", err)
	}
	defer rows.Close()

	out := EmptyShelves()
	for rows.Next() {
		chem, err := scanChemical(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chemical: %w", err)
		}
		if _, ok := out[chem.Category]; !ok {
			c.logger.Debug("Skipping chemical with unknown category", zap.Int64("cid", chem.CID), zap.String("category", chem.Category))
			continue
		}
		out[chem.Category] = append(out[chem.Category], chem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list chemicals: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChemical(s scanner) (Chemical, error) {
	var (
		chem    Chemical
		created int64
	)
	if err := s.Scan(&chem.CID, &chem.Name, &chem.Formula, &chem.MolecularWeight,
		&chem.Category, &chem.IUPACName, &chem.SMILES, &created); err != nil {
		return Chemical{}, err
	}
	chem.CreatedAt = time.Unix(created, 0).UTC()
	chem.Display = displayFormula(chem.Formula, chem.Name)
	return chem, nil
}
