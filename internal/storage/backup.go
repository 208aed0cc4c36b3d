// ABOUTME: Portable SQL backups of the library, gzip-compressed.
// ABOUTME: Emits a transaction-wrapped INSERT dump restorable with the sqlite3 CLI.
package storage

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/oklog/ulid/v2"
)

// BackupInfo describes one backup file on disk.
type BackupInfo struct {
	Name      string
	Path      string
	SizeBytes int64
	CreatedAt time.Time
}

// Backup writes a gzip-compressed SQL dump of instructors, workouts, and
// songs into dir. The dump is wrapped in a single transaction so a restore
// is all-or-nothing. Returns the backup file path.
func (d *DB) Backup(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("pelosync_%s.sql.gz", ulid.Make().String())
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	w := bufio.NewWriter(gz)

	if err := d.dumpSQL(w); err != nil {
		_ = gz.Close()
		_ = os.Remove(path)
		return "", err
	}

	if err := w.Flush(); err != nil {
		_ = gz.Close()
		return "", fmt.Errorf("flush backup: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("close gzip stream: %w", err)
	}
	return path, nil
}

// ListBackups returns backups in dir, newest first. ULID file names sort
// by creation time, so the directory listing is enough.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql.gz") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:      entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// dumpSQL streams the INSERT statements for all library tables.
func (d *DB) dumpSQL(w *bufio.Writer) error {
	header := fmt.Sprintf("-- pelosync backup %s\nBEGIN TRANSACTION;\n", time.Now().UTC().Format(time.RFC3339))
	if _, err := w.WriteString(header); err != nil {
		return fmt.Errorf("write backup header: %w", err)
	}

	tables := []string{"instructors", "workouts", "songs"}
	for _, table := range tables {
		if err := d.dumpTable(w, table); err != nil {
			return err
		}
	}

	if _, err := w.WriteString("COMMIT;\n"); err != nil {
		return fmt.Errorf("write backup footer: %w", err)
	}
	return nil
}

// dumpTable writes one INSERT statement per row of a table.
func (d *DB) dumpTable(w *bufio.Writer, table string) error {
	rows, err := d.db.Query("SELECT * FROM " + table)
	if err != nil {
		return fmt.Errorf("dump %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("dump %s: %w", table, err)
	}

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("dump %s: %w", table, err)
		}

		literals := make([]string, len(cols))
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);\n",
			table, strings.Join(cols, ", "), strings.Join(literals, ", "))
		if _, err := w.WriteString(stmt); err != nil {
			return fmt.Errorf("dump %s: %w", table, err)
		}
	}
	return rows.Err()
}

// sqlLiteral renders a scanned value as a SQL literal.
func sqlLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case []byte:
		return quoteSQL(string(val))
	case string:
		return quoteSQL(val)
	case time.Time:
		return quoteSQL(val.Format(time.RFC3339))
	case sql.RawBytes:
		return quoteSQL(string(val))
	default:
		return quoteSQL(fmt.Sprintf("%v", val))
	}
}

// quoteSQL single-quotes a string, doubling embedded quotes.
func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
