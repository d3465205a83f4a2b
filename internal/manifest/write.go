package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicatePath is returned when a run records the same path twice.
var ErrDuplicatePath = errors.New("artifact path already recorded for run")

// Kind distinguishes pure baselines from perturbed combinations.
type Kind string

const (
	KindPure         Kind = "pure"
	KindPerturbation Kind = "perturbation"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Run is one row of the runs table.
type Run struct {
	ID        string
	Revision  string
	Status    string
	Artifacts int
}

// Artifact is one persisted template. Perturb and Step are empty for pure
// baselines.
type Artifact struct {
	RunID   string
	Seq     int
	Kind    Kind
	Name    string
	Target  string
	Perturb string
	Step    string
	Path    string
	Digest  string
	Notes   string
	Valid   bool
}

// BeginRun inserts a running run for revision and returns its id.
func (s *Store) BeginRun(ctx context.Context, ids IDGenerator, revision string) (string, error) {
	id := ids.Generate()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, revision, status)
		VALUES (?, ?, ?)
	`, id, revision, StatusRunning)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// WriteArtifact records a and bumps the run's artifact count in one
// transaction. Recording a path twice for a run fails with ErrDuplicatePath.
func (s *Store) WriteArtifact(ctx context.Context, a Artifact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write artifact: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts
		(run_id, seq, kind, name, target, perturb, step, path, digest, notes, valid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.RunID,
		a.Seq,
		string(a.Kind),
		a.Name,
		a.Target,
		a.Perturb,
		a.Step,
		a.Path,
		a.Digest,
		a.Notes,
		a.Valid,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("write artifact %s: %w", a.Path, ErrDuplicatePath)
		}
		return fmt.Errorf("write artifact %s: %w", a.Path, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE runs SET artifacts = artifacts + 1 WHERE id = ?
	`, a.RunID); err != nil {
		return fmt.Errorf("write artifact %s: count: %w", a.Path, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write artifact: commit: %w", err)
	}
	return nil
}

// FinishRun sets the final status of a run.
func (s *Store) FinishRun(ctx context.Context, runID, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ? WHERE id = ?
	`, status, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}
