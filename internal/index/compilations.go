// Compilation persistence: save, load, list, and prune compilation records
// with their commands and diagnostics.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/isdood/gloop/pkg/types"
)

// timeFormat stores timestamps with a fixed-width nanosecond fraction so the
// text column sorts chronologically under ORDER BY created_at. RFC3339Nano
// would truncate trailing zeros and break the lexicographic order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SaveCompilation records a compilation. When the latest record for the same
// root carries the same content hash, nothing is written and the existing ID
// is returned with Saved=false.
func (s *Store) SaveCompilation(comp *types.Compilation) (types.SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.SaveResult{}, types.ErrDetached
	}
	if comp == nil || comp.CompilationID == "" {
		return types.SaveResult{}, fmt.Errorf("compilation must have an ID")
	}

	var latestID, latestHash string
	err := s.db.QueryRow(
		"SELECT compilation_id, content_hash FROM compilations WHERE root = ? ORDER BY created_at DESC, compilation_id DESC LIMIT 1",
		comp.Root,
	).Scan(&latestID, &latestHash)
	if err != nil && err != sql.ErrNoRows {
		return types.SaveResult{}, fmt.Errorf("check latest compilation: %w", err)
	}
	if err == nil && latestHash == comp.ContentHash {
		return types.SaveResult{CompilationID: latestID, Saved: false}, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return types.SaveResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	strict := 0
	if comp.Strict {
		strict = 1
	}
	_, err = tx.Exec(
		"INSERT INTO compilations (compilation_id, root, content_hash, strict, created_at, command_count) VALUES (?, ?, ?, ?, ?, ?)",
		comp.CompilationID, comp.Root, comp.ContentHash, strict,
		comp.CreatedAt.UTC().Format(timeFormat), len(comp.Commands),
	)
	if err != nil {
		return types.SaveResult{}, fmt.Errorf("insert compilation: %w", err)
	}

	for _, cmd := range comp.Commands {
		argvJSON, err := json.Marshal(cmd.Argv)
		if err != nil {
			return types.SaveResult{}, fmt.Errorf("marshal argv: %w", err)
		}
		_, err = tx.Exec(
			"INSERT INTO commands (command_id, compilation_id, position, seq_path, argv, shell, source) VALUES (?, ?, ?, ?, ?, ?, ?)",
			cmd.CommandID, comp.CompilationID, cmd.Position, cmd.SeqPath,
			string(argvJSON), cmd.Shell, cmd.Source,
		)
		if err != nil {
			return types.SaveResult{}, fmt.Errorf("insert command: %w", err)
		}
	}

	for _, d := range comp.Diagnostics {
		_, err = tx.Exec(
			"INSERT INTO diagnostics (diagnostic_id, compilation_id, severity, path, message) VALUES (?, ?, ?, ?, ?)",
			newID(), comp.CompilationID, d.Severity, d.Path, d.Message,
		)
		if err != nil {
			return types.SaveResult{}, fmt.Errorf("insert diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return types.SaveResult{}, fmt.Errorf("commit: %w", err)
	}
	return types.SaveResult{CompilationID: comp.CompilationID, Saved: true}, nil
}

// GetCompilation loads a compilation by ID with commands and diagnostics.
func (s *Store) GetCompilation(id string) (*types.Compilation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrDetached
	}

	row := s.db.QueryRow(
		"SELECT compilation_id, root, content_hash, strict, created_at FROM compilations WHERE compilation_id = ?",
		id,
	)
	comp, err := hydrateCompilation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("get compilation %s: %w", id, err)
	}
	if err := s.hydrateChildren(comp); err != nil {
		return nil, err
	}
	return comp, nil
}

// LatestCompilation loads the most recent compilation for a root.
func (s *Store) LatestCompilation(root string) (*types.Compilation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrDetached
	}

	row := s.db.QueryRow(
		"SELECT compilation_id, root, content_hash, strict, created_at FROM compilations WHERE root = ? ORDER BY created_at DESC, compilation_id DESC LIMIT 1",
		root,
	)
	comp, err := hydrateCompilation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("latest compilation for %s: %w", root, err)
	}
	if err := s.hydrateChildren(comp); err != nil {
		return nil, err
	}
	return comp, nil
}

// ListCompilations returns compilations matching the filter, newest first.
func (s *Store) ListCompilations(filter types.ListFilter) ([]*types.Compilation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrDetached
	}

	query := "SELECT compilation_id, root, content_hash, strict, created_at FROM compilations"
	var args []any
	if filter.Root != "" {
		query += " WHERE root = ?"
		args = append(args, filter.Root)
	}
	query += " ORDER BY created_at DESC, compilation_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	defer rows.Close()

	var comps []*types.Compilation
	for rows.Next() {
		comp, err := hydrateCompilation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		comps = append(comps, comp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}

	for _, comp := range comps {
		if err := s.hydrateChildren(comp); err != nil {
			return nil, err
		}
	}
	return comps, nil
}

// DeleteCompilation removes a compilation and its commands and diagnostics.
func (s *Store) DeleteCompilation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrDetached
	}
	return s.deleteLocked(id)
}

// Prune keeps the newest keep compilations per root and deletes the rest.
func (s *Store) Prune(keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return 0, types.ErrDetached
	}
	if keep < 0 {
		keep = 0
	}

	rows, err := s.db.Query(
		`SELECT compilation_id FROM compilations c
		 WHERE compilation_id NOT IN (
		     SELECT compilation_id FROM compilations
		     WHERE root = c.root
		     ORDER BY created_at DESC, compilation_id DESC
		     LIMIT ?
		 )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("select prune candidates: %w", err)
	}
	var victims []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan prune candidate: %w", err)
		}
		victims = append(victims, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("select prune candidates: %w", err)
	}

	for _, id := range victims {
		if err := s.deleteLocked(id); err != nil {
			return 0, err
		}
	}
	return len(victims), nil
}

// deleteLocked removes one compilation row plus children. Caller holds s.mu.
func (s *Store) deleteLocked(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM compilations WHERE compilation_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete compilation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	if _, err := tx.Exec("DELETE FROM commands WHERE compilation_id = ?", id); err != nil {
		return fmt.Errorf("delete commands: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM diagnostics WHERE compilation_id = ?", id); err != nil {
		return fmt.Errorf("delete diagnostics: %w", err)
	}
	return tx.Commit()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// hydrateCompilation scans one compilations row into a Compilation without
// its children.
func hydrateCompilation(row scanner) (*types.Compilation, error) {
	var comp types.Compilation
	var strict int
	var createdAt string
	if err := row.Scan(&comp.CompilationID, &comp.Root, &comp.ContentHash, &strict, &createdAt); err != nil {
		return nil, err
	}
	comp.Strict = strict != 0
	t, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	comp.CreatedAt = t
	return &comp, nil
}

// hydrateChildren loads commands and diagnostics for a compilation.
// Caller holds s.mu (read or write).
func (s *Store) hydrateChildren(comp *types.Compilation) error {
	rows, err := s.db.Query(
		"SELECT command_id, position, seq_path, argv, shell, source FROM commands WHERE compilation_id = ? ORDER BY position",
		comp.CompilationID,
	)
	if err != nil {
		return fmt.Errorf("load commands: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		cmd := types.Command{CompilationID: comp.CompilationID}
		var argvJSON string
		if err := rows.Scan(&cmd.CommandID, &cmd.Position, &cmd.SeqPath, &argvJSON, &cmd.Shell, &cmd.Source); err != nil {
			return fmt.Errorf("scan command: %w", err)
		}
		if err := json.Unmarshal([]byte(argvJSON), &cmd.Argv); err != nil {
			return fmt.Errorf("unmarshal argv: %w", err)
		}
		comp.Commands = append(comp.Commands, cmd)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load commands: %w", err)
	}

	diagRows, err := s.db.Query(
		"SELECT severity, path, message FROM diagnostics WHERE compilation_id = ?",
		comp.CompilationID,
	)
	if err != nil {
		return fmt.Errorf("load diagnostics: %w", err)
	}
	defer diagRows.Close()

	for diagRows.Next() {
		var d types.Diagnostic
		if err := diagRows.Scan(&d.Severity, &d.Path, &d.Message); err != nil {
			return fmt.Errorf("scan diagnostic: %w", err)
		}
		comp.Diagnostics = append(comp.Diagnostics, d)
	}
	return diagRows.Err()
}
