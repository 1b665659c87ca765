package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"bks/internal"
	"bks/internal/quote"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS components (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  unit TEXT,
  unitPrice TEXT NOT NULL,
  laborMax REAL,
  active INTEGER NOT NULL DEFAULT 1,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_components_name ON components(name);

CREATE TABLE IF NOT EXISTS leads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  address TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS quotes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  quoteId TEXT NOT NULL,
  leadId INTEGER,
  createdAt TEXT NOT NULL,
  validUntil TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  totalWithTax TEXT NOT NULL,
  estimatedDays INTEGER NOT NULL,
  answersJson TEXT NOT NULL,
  FOREIGN KEY(leadId) REFERENCES leads(id)
);
CREATE INDEX IF NOT EXISTS idx_quotes_quoteId ON quotes(quoteId);

CREATE TABLE IF NOT EXISTS quote_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  quoteRowId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  quantity REAL NOT NULL,
  unit TEXT,
  unitPrice TEXT NOT NULL,
  lineTotal TEXT NOT NULL,
  laborMax REAL,
  FOREIGN KEY(quoteRowId) REFERENCES quotes(id)
);
CREATE INDEX IF NOT EXISTS idx_quote_items_quote ON quote_items(quoteRowId);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertComponents(components []internal.PricingComponent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO components (id, name, unit, unitPrice, laborMax, active)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  unit=excluded.unit,
  unitPrice=excluded.unitPrice,
  laborMax=excluded.laborMax,
  active=excluded.active,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range components {
		active := 0
		if c.Active {
			active = 1
		}
		if _, err := stmt.Exec(c.ID, c.Name, c.Unit, c.UnitPrice.String(), c.LaborMax, active); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListComponents() ([]internal.PricingComponent, error) {
	return d.listComponents(`SELECT id, name, unit, unitPrice, laborMax, active FROM components ORDER BY name`)
}

func (d *DB) ListActiveComponents() ([]internal.PricingComponent, error) {
	return d.listComponents(`SELECT id, name, unit, unitPrice, laborMax, active FROM components WHERE active = 1 ORDER BY name`)
}

func (d *DB) listComponents(query string) ([]internal.PricingComponent, error) {
	rows, err := d.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.PricingComponent
	for rows.Next() {
		var c internal.PricingComponent
		var price string
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &c.Unit, &price, &c.LaborMax, &active); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("component %s has bad stored price %q: %w", c.ID, price, err)
		}
		c.UnitPrice = parsed
		c.Active = active == 1
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) InsertLead(lead internal.Lead) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO leads (name, email, phone, address) VALUES (?, ?, ?, ?)
`, lead.Name, lead.Email, lead.Phone, lead.Address)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertQuote stores the quote header and its items in one transaction and
// returns the row id, which is the durable key (the quote id itself only has
// minute resolution).
func (d *DB) InsertQuote(q internal.Quote, leadID *int64, answersJSON string) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`
INSERT INTO quotes (quoteId, leadId, createdAt, validUntil, subtotal, totalWithTax, estimatedDays, answersJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, q.ID, leadID, q.CreatedAt.UTC().Format(time.RFC3339), q.ValidUntil.Format(time.RFC3339),
		q.Subtotal.String(), q.TotalWithTax.String(), q.EstimatedDays, answersJSON)
	if err != nil {
		return 0, err
	}
	rowID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
INSERT INTO quote_items (quoteRowId, position, name, category, quantity, unit, unitPrice, lineTotal, laborMax)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, it := range q.Items {
		if _, err := stmt.Exec(rowID, i, it.Name, string(it.Category), it.Quantity, it.Unit,
			it.UnitPrice.String(), it.LineTotal.String(), it.LaborMax); err != nil {
			return 0, err
		}
	}

	return rowID, tx.Commit()
}

// GetQuote loads the most recently stored quote with the given quote id.
// Returns (nil, nil) when no such quote exists.
func (d *DB) GetQuote(quoteID string) (*internal.Quote, error) {
	var (
		rowID                  int64
		createdAt, validUntil  string
		subtotal, totalWithTax string
		q                      internal.Quote
	)
	err := d.conn.QueryRow(`
SELECT id, createdAt, validUntil, subtotal, totalWithTax, estimatedDays
FROM quotes WHERE quoteId = ? ORDER BY id DESC LIMIT 1
`, quoteID).Scan(&rowID, &createdAt, &validUntil, &subtotal, &totalWithTax, &q.EstimatedDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	q.ID = quoteID
	if q.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if q.ValidUntil, err = time.Parse(time.RFC3339, validUntil); err != nil {
		return nil, err
	}
	if q.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, err
	}
	if q.TotalWithTax, err = decimal.NewFromString(totalWithTax); err != nil {
		return nil, err
	}

	items, err := d.listQuoteItems(rowID)
	if err != nil {
		return nil, err
	}
	q.Items = items
	q.CategorySummary = quote.CategorySummary(items)

	return &q, nil
}

func (d *DB) listQuoteItems(quoteRowID int64) ([]internal.QuoteItem, error) {
	rows, err := d.conn.Query(`
SELECT name, category, quantity, unit, unitPrice, lineTotal, laborMax
FROM quote_items WHERE quoteRowId = ? ORDER BY position ASC
`, quoteRowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.QuoteItem
	for rows.Next() {
		var (
			it                   internal.QuoteItem
			category             string
			unitPrice, lineTotal string
		)
		if err := rows.Scan(&it.Name, &category, &it.Quantity, &it.Unit, &unitPrice, &lineTotal, &it.LaborMax); err != nil {
			return nil, err
		}
		it.Category = internal.Category(category)
		if it.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, err
		}
		if it.LineTotal, err = decimal.NewFromString(lineTotal); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (d *DB) ListQuotes(limit int) ([]internal.QuoteSummary, error) {
	rows, err := d.conn.Query(`
SELECT q.quoteId, q.createdAt, q.totalWithTax, q.estimatedDays, l.name
FROM quotes q
LEFT JOIN leads l ON l.id = q.leadId
ORDER BY q.id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.QuoteSummary
	for rows.Next() {
		var (
			s     internal.QuoteSummary
			total string
		)
		if err := rows.Scan(&s.ID, &s.CreatedAt, &total, &s.EstimatedDays, &s.LeadName); err != nil {
			return nil, err
		}
		if s.TotalWithTax, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
