// Package store persists saved games, best scores and power-up inventories.
// PostgreSQL is used for postgres:// URLs, SQLite for everything else.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver for local play
)

var ErrNotFound = errors.New("not found")

type DB struct {
	conn   *sql.DB
	dbType string // "postgres" or "sqlite3"
}

// Connect opens the database named by dbURL and creates the tables.
func Connect(dbURL string) (*DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	driverName := "sqlite3"
	if strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://") {
		driverName = "postgres"
	}

	conn, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driverName == "sqlite3" {
		// One connection keeps :memory: databases shared and serializes writes.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, dbType: driverName}
	if err := db.CreateTables(); err != nil {
		conn.Close()
		return nil, err
	}
	log.Printf("[INFO] Connected to %s database", driverName)
	return db, nil
}

// CreateTables creates the tables if they do not exist.
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS saved_games (
			player_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS best_scores (
			player_id TEXT PRIMARY KEY,
			best_score INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS inventories (
			player_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			units INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (player_id, kind)
		)`,
	}
	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dbType != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// SaveGame stores g as playerID's current game and raises the best score.
func (db *DB) SaveGame(ctx context.Context, playerID string, g game.SavedGame) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, db.rebind(`
		INSERT INTO saved_games (player_id, state, score, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			state = excluded.state, score = excluded.score, updated_at = excluded.updated_at
	`), playerID, string(data), g.Score, now)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	if err := db.raiseBest(ctx, tx, playerID, g.BestScore, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit game: %w", err)
	}
	return nil
}

func (db *DB) raiseBest(ctx context.Context, tx *sql.Tx, playerID string, best int, now time.Time) error {
	_, err := tx.ExecContext(ctx, db.rebind(`
		INSERT INTO best_scores (player_id, best_score, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			best_score = CASE WHEN excluded.best_score > best_scores.best_score
				THEN excluded.best_score ELSE best_scores.best_score END,
			updated_at = excluded.updated_at
	`), playerID, best, now)
	if err != nil {
		return fmt.Errorf("failed to save best score: %w", err)
	}
	return nil
}

// LoadGame returns playerID's saved game or ErrNotFound.
func (db *DB) LoadGame(ctx context.Context, playerID string) (game.SavedGame, error) {
	var g game.SavedGame
	var state string
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`SELECT state FROM saved_games WHERE player_id = ?`), playerID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	if err != nil {
		return g, fmt.Errorf("failed to load game: %w", err)
	}
	if err := json.Unmarshal([]byte(state), &g); err != nil {
		return g, fmt.Errorf("failed to unmarshal game: %w", err)
	}
	return g, nil
}

// DeleteGame forgets playerID's saved game. The best score is kept.
func (db *DB) DeleteGame(ctx context.Context, playerID string) error {
	_, err := db.conn.ExecContext(ctx, db.rebind(`DELETE FROM saved_games WHERE player_id = ?`), playerID)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// BestScore returns playerID's best score, zero if unknown.
func (db *DB) BestScore(ctx context.Context, playerID string) (int, error) {
	var best int
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`SELECT best_score FROM best_scores WHERE player_id = ?`), playerID).Scan(&best)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get best score: %w", err)
	}
	return best, nil
}

// SaveInventory replaces playerID's power-up counts.
func (db *DB) SaveInventory(ctx context.Context, playerID string, counts map[game.PowerUpKind]int) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for kind, units := range counts {
		_, err := tx.ExecContext(ctx, db.rebind(`
			INSERT INTO inventories (player_id, kind, units) VALUES (?, ?, ?)
			ON CONFLICT (player_id, kind) DO UPDATE SET units = excluded.units
		`), playerID, string(kind), units)
		if err != nil {
			return fmt.Errorf("failed to save inventory: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inventory: %w", err)
	}
	return nil
}

// LoadInventory returns playerID's counts or ErrNotFound if none were saved.
func (db *DB) LoadInventory(ctx context.Context, playerID string) (map[game.PowerUpKind]int, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(
		`SELECT kind, units FROM inventories WHERE player_id = ?`), playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	defer rows.Close()

	counts := make(map[game.PowerUpKind]int)
	for rows.Next() {
		var kind string
		var units int
		if err := rows.Scan(&kind, &units); err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		counts[game.PowerUpKind(kind)] = units
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	if len(counts) == 0 {
		return nil, ErrNotFound
	}
	return counts, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}
