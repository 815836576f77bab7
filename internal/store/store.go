// Package store handles all database interactions. Lists and their items
// live in a path-addressed document table; users and sessions in plain
// relational tables.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// docPath joins path segments, rejecting empty segments and segments with a slash.
func docPath(segments ...string) (string, error) {
	for _, seg := range segments {
		if seg == "" || strings.Contains(seg, "/") {
			return "", fmt.Errorf("%w: segment %q", ErrInvalidPath, seg)
		}
	}
	return strings.Join(segments, "/"), nil
}

func splitPath(path string) (parent, id string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// getDoc decodes the document at path into v.
func getDoc(ctx context.Context, q querier, path string, v any) error {
	var data string
	err := q.QueryRowContext(ctx, "SELECT data FROM documents WHERE path = ?", path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), v)
}

// setDoc writes v at path, replacing any existing document but keeping its creation time.
func setDoc(ctx context.Context, q querier, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	parent, id := splitPath(path)
	now := time.Now().UTC()
	_, err = q.ExecContext(ctx, `
		INSERT INTO documents (path, parent, doc_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		path, parent, id, string(data), now, now)
	return err
}

// mergeDoc overwrites only the given top-level fields of an existing document.
func mergeDoc(ctx context.Context, q querier, path string, fields map[string]any) error {
	var doc map[string]any
	if err := getDoc(ctx, q, path, &doc); err != nil {
		return err
	}
	for k, v := range fields {
		doc[k] = v
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	_, err = q.ExecContext(ctx, "UPDATE documents SET data = ?, updated_at = ? WHERE path = ?",
		string(data), time.Now().UTC(), path)
	return err
}

// deleteDoc removes the document at path. It returns ErrNotFound when nothing was deleted.
func deleteDoc(ctx context.Context, q querier, path string) error {
	res, err := q.ExecContext(ctx, "DELETE FROM documents WHERE path = ?", path)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// collectionData returns the raw documents of a collection in insertion order.
func collectionData(ctx context.Context, q querier, parent, extraWhere string, limit int, args ...any) ([]string, error) {
	query := "SELECT data FROM documents WHERE parent = ?"
	if extraWhere != "" {
		query += " AND " + extraWhere
	}
	query += " ORDER BY rowid ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := q.QueryContext(ctx, query, append([]any{parent}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		docs = append(docs, data)
	}
	return docs, rows.Err()
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
