package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"gerencial/internal"
)

// MetaLastSuccess holds the output path and time of the last successful run.
const MetaLastSuccess = "report.last_success"

// tsLayout is fixed width so run timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

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
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  startedAt TEXT NOT NULL,
  finishedAt TEXT,
  status TEXT NOT NULL,
  error TEXT NOT NULL DEFAULT '',
  outputPath TEXT NOT NULL DEFAULT '',
  countsJson TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_runs_startedAt ON runs(startedAt);

CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS attachments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  emailId INTEGER NOT NULL,
  fileName TEXT NOT NULL,
  path TEXT NOT NULL,
  hash TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(emailId, fileName),
  FOREIGN KEY(emailId) REFERENCES emails(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) StartRun(id string, startedAt time.Time) error {
	_, err := d.conn.Exec(`INSERT INTO runs (id, startedAt, status) VALUES (?, ?, ?)`,
		id, startedAt.UTC().Format(tsLayout), internal.RunRunning)
	return err
}

// FinishRun closes a run. runErr nil means success.
func (d *DB) FinishRun(id string, finishedAt time.Time, outputPath string, counts map[string]int, runErr error) error {
	countsJSON, _ := json.Marshal(counts)
	status := internal.RunOK
	message := ""
	if runErr != nil {
		status = internal.RunFailed
		message = runErr.Error()
	}
	res, err := d.conn.Exec(`
UPDATE runs SET finishedAt = ?, status = ?, error = ?, outputPath = ?, countsJson = ?
WHERE id = ?
`, finishedAt.UTC().Format(tsLayout), status, message, outputPath, string(countsJSON), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

func (d *DB) GetRun(id string) (*internal.RunRecord, error) {
	row := d.conn.QueryRow(`
SELECT id, startedAt, finishedAt, status, error, outputPath, countsJson
FROM runs WHERE id = ?
`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, startedAt, finishedAt, status, error, outputPath, countsJson
FROM runs ORDER BY startedAt DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (internal.RunRecord, error) {
	var run internal.RunRecord
	var started string
	var finished sql.NullString
	var countsJSON string
	if err := s.Scan(&run.ID, &started, &finished, &run.Status, &run.Error, &run.OutputPath, &countsJSON); err != nil {
		return internal.RunRecord{}, err
	}
	t, err := time.Parse(tsLayout, started)
	if err != nil {
		return internal.RunRecord{}, err
	}
	run.StartedAt = t
	if finished.Valid {
		if t, err := time.Parse(tsLayout, finished.String); err == nil {
			run.FinishedAt = &t
		}
	}
	_ = json.Unmarshal([]byte(countsJSON), &run.Counts)
	return run, nil
}

func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) UpdateEmailStatus(emailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, emailID)
	return err
}

// InsertAttachment records a saved extract. It reports false when the message
// already had an attachment with that name.
func (d *DB) InsertAttachment(emailID int, fileName, path, hash string) (bool, error) {
	res, err := d.conn.Exec(`
INSERT INTO attachments (emailId, fileName, path, hash) VALUES (?, ?, ?, ?)
ON CONFLICT(emailId, fileName) DO NOTHING
`, emailID, fileName, path, hash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *DB) ListAttachments(emailID int) ([]internal.AttachmentRow, error) {
	rows, err := d.conn.Query(`
SELECT id, emailId, fileName, path, hash FROM attachments WHERE emailId = ? ORDER BY id ASC
`, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.AttachmentRow
	for rows.Next() {
		var row internal.AttachmentRow
		if err := rows.Scan(&row.ID, &row.EmailID, &row.FileName, &row.Path, &row.Hash); err != nil {
			return nil, err
		}
		out = append(out, row)
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
