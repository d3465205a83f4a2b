package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned by ReadRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run with id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, revision, status, artifacts
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Revision, &r.Status, &r.Artifacts)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ReadArtifacts returns the artifacts of a run ordered by kind (pure first)
// and sequence number.
func (s *Store) ReadArtifacts(ctx context.Context, runID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, kind, name, target, perturb, step, path, digest, notes, valid
		FROM artifacts
		WHERE run_id = ?
		ORDER BY CASE kind WHEN 'pure' THEN 0 ELSE 1 END, seq ASC, path ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		var kind string
		if err := rows.Scan(
			&a.RunID, &a.Seq, &kind, &a.Name, &a.Target, &a.Perturb,
			&a.Step, &a.Path, &a.Digest, &a.Notes, &a.Valid,
		); err != nil {
			return nil, fmt.Errorf("read artifacts: scan: %w", err)
		}
		a.Kind = Kind(kind)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read artifacts: %w", err)
	}
	return out, nil
}
