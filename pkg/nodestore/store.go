// Package nodestore persists the registry of commissioned nodes in
// SQLite, so the bridge remembers which node ids it has paired across
// restarts.
package nodestore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no node matches the query.
var ErrNotFound = errors.New("node not found")

// Node is one commissioned device.
type Node struct {
	ID       string    `json:"id"`
	NodeID   uint64    `json:"node_id"`
	Name     string    `json:"name,omitempty"`
	Method   string    `json:"method"` // onnetwork, code, ble-wifi, ble-thread
	PairedAt time.Time `json:"paired_at"`
}

// Store provides SQLite persistence for commissioned nodes.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store at the given database path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys and WAL mode for better concurrent behavior.
	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		node_id INTEGER NOT NULL UNIQUE,
		name TEXT,
		method TEXT NOT NULL,
		paired_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_node_id ON nodes(node_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add records a commissioned node. An existing record for the same node id
// is replaced: re-pairing a node updates its method and timestamp.
func (s *Store) Add(nodeID uint64, name, method string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := &Node{
		ID:       uuid.New().String(),
		NodeID:   nodeID,
		Name:     name,
		Method:   method,
		PairedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO nodes (id, node_id, name, method, paired_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(node_id) DO UPDATE SET
			name = excluded.name,
			method = excluded.method,
			paired_at = excluded.paired_at
	`, n.ID, int64(n.NodeID), n.Name, n.Method, n.PairedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add node: %w", err)
	}

	return n, nil
}

// Get retrieves a node by its Matter node id.
func (s *Store) Get(nodeID uint64) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n Node
	var rawNodeID int64
	err := s.db.QueryRow(`
		SELECT id, node_id, name, method, paired_at
		FROM nodes WHERE node_id = ?
	`, int64(nodeID)).Scan(&n.ID, &rawNodeID, &n.Name, &n.Method, &n.PairedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	n.NodeID = uint64(rawNodeID)
	return &n, nil
}

// List returns all commissioned nodes, most recently paired first.
func (s *Store) List() ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, node_id, name, method, paired_at
		FROM nodes ORDER BY paired_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var n Node
		var rawNodeID int64
		if err := rows.Scan(&n.ID, &rawNodeID, &n.Name, &n.Method, &n.PairedAt); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.NodeID = uint64(rawNodeID)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// Remove deletes a node from the registry.
func (s *Store) Remove(nodeID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM nodes WHERE node_id = ?`, int64(nodeID))
	if err != nil {
		return fmt.Errorf("failed to remove node: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of commissioned nodes.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count)
	return count, err
}
