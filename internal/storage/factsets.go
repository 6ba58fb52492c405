package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"muster/internal/factset"
	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

func (s *Store) FactSets(ctx context.Context) ([]factset.FactSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, enabled, companion_fact_id FROM fact_sets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query fact sets: %w", err)
	}
	defer rows.Close()

	var sets []factset.FactSet
	for rows.Next() {
		var set factset.FactSet
		if err := rows.Scan(&set.ID, &set.Name, &set.Enabled, &set.CompanionFactID); err != nil {
			return nil, fmt.Errorf("scan fact set: %w", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sets {
		if err := s.loadFactSetEdges(ctx, &sets[i]); err != nil {
			return nil, err
		}
	}
	return sets, nil
}

func (s *Store) FactSetByID(ctx context.Context, setID id.FactSetID) (*factset.FactSet, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, enabled, companion_fact_id FROM fact_sets WHERE id = $1`, int64(setID))
	return s.scanFactSet(ctx, row)
}

func (s *Store) FactSetByName(ctx context.Context, name string) (*factset.FactSet, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, enabled, companion_fact_id FROM fact_sets WHERE name = $1`, name)
	return s.scanFactSet(ctx, row)
}

func (s *Store) scanFactSet(ctx context.Context, row pgx.Row) (*factset.FactSet, error) {
	var set factset.FactSet
	if err := row.Scan(&set.ID, &set.Name, &set.Enabled, &set.CompanionFactID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan fact set: %w", err)
	}
	if err := s.loadFactSetEdges(ctx, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *Store) loadFactSetEdges(ctx context.Context, set *factset.FactSet) error {
	rows, err := s.pool.Query(ctx,
		`SELECT fact_id, excluded FROM fact_set_edges WHERE fact_set_id = $1 ORDER BY fact_id`,
		int64(set.ID))
	if err != nil {
		return fmt.Errorf("query fact set edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var factID id.FactID
		var excluded bool
		if err := rows.Scan(&factID, &excluded); err != nil {
			return fmt.Errorf("scan fact set edge: %w", err)
		}
		if excluded {
			set.ExcludedFactIDs = append(set.ExcludedFactIDs, factID)
		} else {
			set.IncludedFactIDs = append(set.IncludedFactIDs, factID)
		}
	}
	return rows.Err()
}

func (s *Store) CreateFactSet(ctx context.Context, set *factset.FactSet) (*factset.FactSet, error) {
	if set == nil {
		return nil, fmt.Errorf("fact set is required")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	created := *set
	err = tx.QueryRow(ctx,
		`INSERT INTO fact_sets (name, enabled, companion_fact_id) VALUES ($1, $2, $3)
		   RETURNING id`,
		set.Name, set.Enabled, int64(set.CompanionFactID)).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert fact set: %w", err)
	}
	if err := replaceEdges(ctx, tx, created.ID, created.IncludedFactIDs, created.ExcludedFactIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &created, nil
}

func (s *Store) UpdateFactSet(ctx context.Context, set *factset.FactSet) error {
	if set == nil {
		return fmt.Errorf("fact set is required")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE fact_sets SET name = $2, enabled = $3, companion_fact_id = $4 WHERE id = $1`,
		int64(set.ID), set.Name, set.Enabled, int64(set.CompanionFactID))
	if err != nil {
		return fmt.Errorf("update fact set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM fact_set_edges WHERE fact_set_id = $1`, int64(set.ID)); err != nil {
		return fmt.Errorf("clear fact set edges: %w", err)
	}
	if err := replaceEdges(ctx, tx, set.ID, set.IncludedFactIDs, set.ExcludedFactIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) DeleteFactSet(ctx context.Context, setID id.FactSetID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM fact_sets WHERE id = $1`, int64(setID))
	if err != nil {
		return fmt.Errorf("delete fact set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func replaceEdges(ctx context.Context, tx pgx.Tx, setID id.FactSetID, included, excluded []id.FactID) error {
	for _, factID := range included {
		if _, err := tx.Exec(ctx,
			`INSERT INTO fact_set_edges (fact_set_id, fact_id, excluded) VALUES ($1, $2, FALSE)
			 ON CONFLICT DO NOTHING`,
			int64(setID), int64(factID)); err != nil {
			return fmt.Errorf("insert include edge: %w", err)
		}
	}
	for _, factID := range excluded {
		if _, err := tx.Exec(ctx,
			`INSERT INTO fact_set_edges (fact_set_id, fact_id, excluded) VALUES ($1, $2, TRUE)
			 ON CONFLICT DO NOTHING`,
			int64(setID), int64(factID)); err != nil {
			return fmt.Errorf("insert exclude edge: %w", err)
		}
	}
	return nil
}
