// Package settingsdb persists operator settings and web admin users in a
// local SQLite database: the last used connection descriptor survives
// restarts, and login credentials are stored as bcrypt hashes.
package settingsdb

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/mattn/go-sqlite3"
)

// KeyConnectionString is the settings key holding the active descriptor.
const KeyConnectionString = "connection_string"

var (
	db     *sql.DB
	dbPath = "busview.db"
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type UserCreateDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func SetDbPath(path string) {
	dbPath = path
}

// InitDB creates the schema. Safe to call on an existing database.
func InitDB() error {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.Debug().Str("path", dbPath).Msg("Settings database initialized")
	return nil
}

func OpenDB() error {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db = conn
	return nil
}

func CloseDB() {
	if db != nil {
		db.Close()
		db = nil
	}
}

/* Users */

func AddUser(user UserCreateDTO) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = db.Exec("INSERT INTO users (username, password_hash) VALUES (?, ?)", user.Username, string(hash))
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	return nil
}

func GetUsers() ([]User, error) {
	rows, err := db.Query("SELECT id, username FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func UserExists(username string) (bool, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", username).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Authenticate verifies credentials against the stored bcrypt hash.
func Authenticate(username, password string) (bool, error) {
	var hash string
	err := db.QueryRow("SELECT password_hash FROM users WHERE username = ?", username).Scan(&hash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

/* Settings */

func GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting '%s': %w", key, err)
	}
	return value, nil
}

func PutSetting(key, value string) error {
	_, err := db.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting '%s': %w", key, err)
	}
	return nil
}
