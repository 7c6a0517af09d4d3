// Package auditlog is an external collaborator, never called by the
// vault package itself: the CLI layer logs an opaque record after each
// operation it performs. It is sqlite-backed and HMAC-chains every
// record to the one before it, so a single row cannot be edited or
// deleted without invalidating every record after it.
//
// Consistent with the teacher's posture on audit logging, a database
// that cannot be opened or written to degrades gracefully — callers
// should treat a failed Open as "audit logging unavailable" rather than
// fail the operation that triggered it.
package auditlog

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"

	"github.com/whynaidu/envvault/internal/cryptoprim"
)

// Operation names recorded by the CLI.
const (
	OpVaultCreate   = "vault.create"
	OpVaultOpen     = "vault.open"
	OpVaultOpenFail = "vault.open_failed"
	OpSecretSet     = "secret.set"
	OpSecretGet     = "secret.get"
	OpSecretList    = "secret.list"
	OpSecretDelete  = "secret.delete"
	OpPasswordRotate = "vault.rotate"
	OpRun           = "vault.run"
	OpDiff          = "vault.diff"
	OpEdit          = "vault.edit"
	OpEnvClone      = "env.clone"
	OpEnvDelete     = "env.delete"
)

// Source identifies which surface triggered the operation.
const (
	SourceCLI = "cli"
	SourceMCP = "mcp"
)

const keyFileName = "audit.key"
const dbFileName = "audit.db"
const genesisHash = "genesis"

// Entry is a single audit log record as read back from the database.
type Entry struct {
	ID          int64
	EventID     string
	Timestamp   time.Time
	Operation   string
	Source      string
	Environment string
	KeyName     string
	Success     bool
	Detail      string
	PrevHash    string
	HMAC        string
}

// Log is a handle to an open audit database. Construct one with Open.
type Log struct {
	db       *sql.DB
	hmacKey  []byte
	prevHash string
}

// Open opens (creating if necessary) the audit database and signing key
// under dir. dir is created with 0700 permissions if it does not exist.
func Open(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("auditlog: create directory %s: %w", dir, err)
	}

	keyPath := filepath.Join(dir, keyFileName)
	hmacKey, err := loadOrCreateKey(keyPath)
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, dbFileName)
	dbExisted := true
	if _, statErr := os.Stat(dbPath); os.IsNotExist(statErr) {
		dbExisted = false
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("auditlog: open database: %w", err)
	}
	if !dbExisted {
		if chErr := os.Chmod(dbPath, 0o600); chErr != nil {
			db.Close()
			return nil, fmt.Errorf("auditlog: set database permissions: %w", chErr)
		}
	}

	const createTable = `
CREATE TABLE IF NOT EXISTS audit_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id    TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	operation   TEXT NOT NULL,
	source      TEXT NOT NULL,
	environment TEXT NOT NULL,
	key_name    TEXT,
	success     INTEGER NOT NULL,
	detail      TEXT,
	prev_hash   TEXT NOT NULL,
	hmac        TEXT NOT NULL
);`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditlog: create table: %w", err)
	}
	if !dbExisted {
		if chErr := os.Chmod(dbPath, 0o600); chErr != nil {
			db.Close()
			return nil, fmt.Errorf("auditlog: set database permissions: %w", chErr)
		}
	}

	prevHash, err := lastHash(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	checkAndWarnPermissions(dir)

	return &Log{db: db, hmacKey: hmacKey, prevHash: prevHash}, nil
}

// checkAndWarnPermissions flags group/world-accessible permissions on
// the audit directory and its signing key and database files. This is
// advisory only — it never blocks Open — since a pre-existing directory
// created under a restrictive umask elsewhere is common and not itself
// a reason to fail.
func checkAndWarnPermissions(dir string) {
	if info, err := os.Stat(dir); err == nil {
		if perm := info.Mode().Perm(); perm&0o077 != 0 {
			fmt.Fprintf(os.Stderr, "warning: audit directory %s has insecure permissions %04o (expected 0700)\n", dir, perm)
		}
	}
	for _, name := range []string{keyFileName, dbFileName} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil {
			if perm := info.Mode().Perm(); perm&0o077 != 0 {
				fmt.Fprintf(os.Stderr, "warning: %s has insecure permissions %04o (expected 0600)\n", path, perm)
			}
		}
	}
}

func loadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != cryptoprim.KeyLength {
			return nil, fmt.Errorf("auditlog: signing key at %s has unexpected length %d", path, len(data))
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("auditlog: read signing key %s: %w", path, err)
	}

	key, err := cryptoprim.GenerateSalt() // 32 random bytes, same generator as a KDF salt
	if err != nil {
		return nil, fmt.Errorf("auditlog: generate signing key: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("auditlog: write signing key %s: %w", path, err)
	}
	return key, nil
}

func lastHash(db *sql.DB) (string, error) {
	var hash string
	err := db.QueryRow(`SELECT hmac FROM audit_log ORDER BY id DESC LIMIT 1`).Scan(&hash)
	if err == sql.ErrNoRows {
		return genesisHash, nil
	}
	if err != nil {
		return "", fmt.Errorf("auditlog: read chain tail: %w", err)
	}
	return hash, nil
}

// Log appends a record to the chain. Consistent with the teacher's
// fire-and-forget posture, a write failure here is reported to the
// caller but is never meant to roll back the operation it describes.
func (l *Log) Log(operation, source, environment, keyName string, success bool, detail string) error {
	now := time.Now().UTC()
	eventID := uuid.NewString()

	tag := cryptoprim.ComputeHMAC(l.hmacKey,
		[]byte(eventID),
		[]byte(now.Format(time.RFC3339Nano)),
		[]byte(operation),
		[]byte(source),
		[]byte(environment),
		[]byte(keyName),
		[]byte(detail),
		successByte(success),
		[]byte(l.prevHash),
	)
	hash := hex.EncodeToString(tag)

	_, err := l.db.Exec(
		`INSERT INTO audit_log (event_id, timestamp, operation, source, environment, key_name, success, detail, prev_hash, hmac)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		eventID, now.Format(time.RFC3339Nano), operation, source, environment, keyName, success, detail, l.prevHash, hash,
	)
	if err != nil {
		return fmt.Errorf("auditlog: insert record: %w", err)
	}
	l.prevHash = hash
	return nil
}

// Recent returns up to limit entries, most recent first.
func (l *Log) Recent(limit int) ([]Entry, error) {
	rows, err := l.db.Query(
		`SELECT id, event_id, timestamp, operation, source, environment, key_name, success, detail, prev_hash, hmac
		 FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("auditlog: query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		var keyName, detail sql.NullString
		if err := rows.Scan(&e.ID, &e.EventID, &ts, &e.Operation, &e.Source, &e.Environment, &keyName, &e.Success, &detail, &e.PrevHash, &e.HMAC); err != nil {
			return nil, fmt.Errorf("auditlog: scan record: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("auditlog: parse timestamp %q: %w", ts, err)
		}
		e.Timestamp = parsed
		e.KeyName = keyName.String
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Verify walks every record in insertion order and recomputes its HMAC
// against the recorded prev_hash, returning an error identifying the
// first record whose chain has been broken by tampering or deletion.
func (l *Log) Verify() error {
	rows, err := l.db.Query(
		`SELECT event_id, timestamp, operation, source, environment, key_name, success, detail, prev_hash, hmac
		 FROM audit_log ORDER BY id ASC`)
	if err != nil {
		return fmt.Errorf("auditlog: query for verification: %w", err)
	}
	defer rows.Close()

	expectedPrev := genesisHash
	for rows.Next() {
		var eventID, ts, operation, source, environment, prevHash, storedHash string
		var success bool
		var keyName, detail sql.NullString
		if err := rows.Scan(&eventID, &ts, &operation, &source, &environment, &keyName, &success, &detail, &prevHash, &storedHash); err != nil {
			return fmt.Errorf("auditlog: scan record for verification: %w", err)
		}
		if prevHash != expectedPrev {
			return fmt.Errorf("auditlog: chain broken at event %s: recorded prev_hash does not match", eventID)
		}
		tag := cryptoprim.ComputeHMAC(l.hmacKey,
			[]byte(eventID), []byte(ts), []byte(operation), []byte(source),
			[]byte(environment), []byte(keyName.String), []byte(detail.String), successByte(success), []byte(prevHash),
		)
		if hex.EncodeToString(tag) != storedHash {
			return fmt.Errorf("auditlog: chain broken at event %s: HMAC does not match stored record", eventID)
		}
		expectedPrev = storedHash
	}
	return rows.Err()
}

func successByte(success bool) []byte {
	if success {
		return []byte{1}
	}
	return []byte{0}
}

// Close releases the database handle.
func (l *Log) Close() error {
	return l.db.Close()
}
