package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"muster/internal/facts"
	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

func (s *Store) CategoryByID(ctx context.Context, categoryID id.CategoryID) (*facts.Category, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, kind, sort FROM categories WHERE id = $1`, int64(categoryID))
	return scanCategory(row)
}

func (s *Store) CategoryByName(ctx context.Context, name string) (*facts.Category, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, kind, sort FROM categories WHERE name = $1`, name)
	return scanCategory(row)
}

func scanCategory(row pgx.Row) (*facts.Category, error) {
	var c facts.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Kind, &c.Sort); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &c, nil
}

func (s *Store) FactByID(ctx context.Context, factID id.FactID) (*facts.Fact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, category_id, value, description, latitude, longitude
		   FROM facts WHERE id = $1`, int64(factID))
	return scanFact(row)
}

func (s *Store) FindFact(ctx context.Context, categoryID id.CategoryID, value string) (*facts.Fact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, category_id, value, description, latitude, longitude
		   FROM facts WHERE category_id = $1 AND value = $2`, int64(categoryID), value)
	return scanFact(row)
}

func scanFact(row pgx.Row) (*facts.Fact, error) {
	var f facts.Fact
	if err := row.Scan(&f.ID, &f.CategoryID, &f.Value, &f.Description, &f.Latitude, &f.Longitude); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan fact: %w", err)
	}
	return &f, nil
}

func (s *Store) FactsByIDs(ctx context.Context, factIDs []id.FactID) (map[id.FactID]*facts.Fact, error) {
	ids := make([]int64, 0, len(factIDs))
	for _, factID := range factIDs {
		ids = append(ids, int64(factID))
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, category_id, value, description, latitude, longitude
		   FROM facts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	out := make(map[id.FactID]*facts.Fact, len(factIDs))
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		out[f.ID] = f
	}
	return out, rows.Err()
}

func (s *Store) FindOrCreateFact(ctx context.Context, input *facts.Fact) (*facts.Fact, error) {
	if input == nil {
		return nil, fmt.Errorf("fact is required")
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO facts (category_id, value, description, latitude, longitude)
		      VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (category_id, value) DO UPDATE SET value = EXCLUDED.value
		   RETURNING id, category_id, value, description, latitude, longitude`,
		int64(input.CategoryID), input.Value, input.Description, input.Latitude, input.Longitude)
	return scanFact(row)
}

func (s *Store) UpdateFact(ctx context.Context, factID id.FactID, value, description string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE facts SET value = $2, description = $3 WHERE id = $1`,
		int64(factID), value, description)
	if err != nil {
		return fmt.Errorf("update fact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteFact(ctx context.Context, factID id.FactID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM facts WHERE id = $1`, int64(factID))
	if err != nil {
		return fmt.Errorf("delete fact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) MachineFacts(ctx context.Context, machineID id.MachineID) ([]id.FactID, error) {
	if _, err := s.MachineStatus(ctx, machineID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT fact_id FROM machine_facts WHERE machine_id = $1 ORDER BY fact_id`,
		int64(machineID))
	if err != nil {
		return nil, fmt.Errorf("query machine facts: %w", err)
	}
	defer rows.Close()

	var factIDs []id.FactID
	for rows.Next() {
		var factID id.FactID
		if err := rows.Scan(&factID); err != nil {
			return nil, fmt.Errorf("scan machine fact: %w", err)
		}
		factIDs = append(factIDs, factID)
	}
	return factIDs, rows.Err()
}

func (s *Store) MachineProject(ctx context.Context, machineID id.MachineID) (id.ProjectID, error) {
	var projectID id.ProjectID
	err := s.pool.QueryRow(ctx,
		`SELECT project_id FROM machines WHERE id = $1`, int64(machineID)).Scan(&projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("query machine project: %w", err)
	}
	return projectID, nil
}

func (s *Store) MachineStatus(ctx context.Context, machineID id.MachineID) (string, error) {
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT status FROM machines WHERE id = $1`, int64(machineID)).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("query machine status: %w", err)
	}
	return status, nil
}

func (s *Store) Machines(ctx context.Context) ([]facts.Machine, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.project_id, m.status,
		        COALESCE(array_agg(mf.fact_id ORDER BY mf.fact_id)
		                 FILTER (WHERE mf.fact_id IS NOT NULL), '{}')
		   FROM machines m
		   LEFT JOIN machine_facts mf ON mf.machine_id = m.id
		  GROUP BY m.id
		  ORDER BY m.id`)
	if err != nil {
		return nil, fmt.Errorf("query machines: %w", err)
	}
	defer rows.Close()

	var out []facts.Machine
	for rows.Next() {
		var m facts.Machine
		var factIDs []int64
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Status, &factIDs); err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		m.FactIDs = make([]id.FactID, 0, len(factIDs))
		for _, factID := range factIDs {
			m.FactIDs = append(m.FactIDs, id.FactID(factID))
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertMachine registers a machine and replaces its carried fact set.
func (s *Store) UpsertMachine(ctx context.Context, machine facts.Machine) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO machines (id, project_id, status) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET project_id = EXCLUDED.project_id, status = EXCLUDED.status`,
		int64(machine.ID), int64(machine.ProjectID), machine.Status); err != nil {
		return fmt.Errorf("upsert machine: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM machine_facts WHERE machine_id = $1`, int64(machine.ID)); err != nil {
		return fmt.Errorf("clear machine facts: %w", err)
	}
	for _, factID := range machine.FactIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO machine_facts (machine_id, fact_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			int64(machine.ID), int64(factID)); err != nil {
			return fmt.Errorf("insert machine fact: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// AddCategory registers a category.
func (s *Store) AddCategory(ctx context.Context, category facts.Category) (*facts.Category, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO categories (name, kind, sort) VALUES ($1, $2, $3)
		   RETURNING id, name, kind, sort`,
		category.Name, string(category.Kind), string(category.Sort))
	return scanCategory(row)
}
