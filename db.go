package mcuimage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// AssetDB caches generated headers keyed by the SHA-1 of the source image
// and the conversion options.
type AssetDB struct {
	db *sql.DB
}

// NewAssetDB opens or creates the cache in file.
func NewAssetDB(file string) (*AssetDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	// Scan workers share the handle, serialise writers
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS asset (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, options TEXT NOT NULL, header TEXT NOT NULL, UNIQUE(sha1, options))"); err != nil {
		db.Close()
		return nil, err
	}

	return &AssetDB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *AssetDB) Close() error {
	return db.db.Close()
}

// FindAsset returns the header previously stored for the checksum and
// options.
func (db *AssetDB) FindAsset(sha, options string) (string, bool, error) {
	var text string
	switch err := db.db.QueryRow("SELECT header FROM asset WHERE sha1 = ? AND options = ?", sha, options).Scan(&text); err {
	case sql.ErrNoRows:
		return "", false, nil
	case nil:
		return text, true, nil
	default:
		return "", false, err
	}
}

// AddAsset stores a header, replacing any existing one for the same checksum
// and options.
func (db *AssetDB) AddAsset(sha, options, text string) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO asset (sha1, options, header) VALUES (?, ?, ?)", sha, options, text); err != nil {
		return err
	}
	return nil
}

// Purge removes every cached header and returns how many there were.
func (db *AssetDB) Purge() (int64, error) {
	result, err := db.db.Exec("DELETE FROM asset")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
