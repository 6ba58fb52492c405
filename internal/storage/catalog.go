package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"muster/internal/policy"
	"muster/internal/rollout"
	"muster/internal/scope"
	id "muster/pkg/domain"
	"muster/pkg/platform/sentinel"
)

// EnabledPolicies loads the full enabled policy tree: policies, their
// predicate edges, groups ordered by priority, and per-project packages.
func (s *Store) EnabledPolicies(ctx context.Context) ([]policy.Policy, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, enabled, exclusive FROM policies WHERE enabled ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	var policies []policy.Policy
	for rows.Next() {
		var p policy.Policy
		if err := rows.Scan(&p.ID, &p.Name, &p.Enabled, &p.Exclusive); err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range policies {
		p := &policies[i]
		p.IncludedFactIDs, p.ExcludedFactIDs, err = s.edgeLists(ctx,
			`SELECT fact_id, excluded FROM policy_edges WHERE policy_id = $1 ORDER BY fact_id`,
			int64(p.ID))
		if err != nil {
			return nil, err
		}
		if p.Groups, err = s.policyGroups(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return policies, nil
}

func (s *Store) policyGroups(ctx context.Context, policyID id.PolicyID) ([]policy.Group, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, priority FROM policy_groups WHERE policy_id = $1 ORDER BY priority`,
		int64(policyID))
	if err != nil {
		return nil, fmt.Errorf("query policy groups: %w", err)
	}
	defer rows.Close()

	var groups []policy.Group
	for rows.Next() {
		var g policy.Group
		if err := rows.Scan(&g.ID, &g.Priority); err != nil {
			return nil, fmt.Errorf("scan policy group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		g := &groups[i]
		g.IncludedFactIDs, g.ExcludedFactIDs, err = s.edgeLists(ctx,
			`SELECT fact_id, excluded FROM policy_group_edges WHERE group_id = $1 ORDER BY fact_id`,
			int64(g.ID))
		if err != nil {
			return nil, err
		}
		if g.Applications, err = s.groupApplications(ctx, g.ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (s *Store) groupApplications(ctx context.Context, groupID id.PolicyGroupID) ([]policy.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.name, ap.project_id, ap.packages
		   FROM applications a
		   LEFT JOIN application_packages ap ON ap.application_id = a.id
		  WHERE a.group_id = $1
		  ORDER BY a.id`, int64(groupID))
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var apps []policy.Application
	byID := make(map[int64]int)
	for rows.Next() {
		var appID int64
		var name string
		var projectID *int64
		var packages *string
		if err := rows.Scan(&appID, &name, &projectID, &packages); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		idx, ok := byID[appID]
		if !ok {
			apps = append(apps, policy.Application{
				Name:              name,
				PackagesByProject: make(map[id.ProjectID]string),
			})
			idx = len(apps) - 1
			byID[appID] = idx
		}
		if projectID != nil && packages != nil {
			apps[idx].PackagesByProject[id.ProjectID(*projectID)] = *packages
		}
	}
	return apps, rows.Err()
}

// edgeLists splits an include/exclude edge query into the two fact lists.
func (s *Store) edgeLists(ctx context.Context, query string, ownerID int64) (included, excluded []id.FactID, err error) {
	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var factID id.FactID
		var isExcluded bool
		if err := rows.Scan(&factID, &isExcluded); err != nil {
			return nil, nil, fmt.Errorf("scan edge: %w", err)
		}
		if isExcluded {
			excluded = append(excluded, factID)
		} else {
			included = append(included, factID)
		}
	}
	return included, excluded, rows.Err()
}

func (s *Store) DeploymentByID(ctx context.Context, deploymentID id.DeploymentID) (*rollout.Deployment, error) {
	var d rollout.Deployment
	var startDate *string
	var scheduleID *int64
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, enabled, project_id, to_char(start_date, 'YYYY-MM-DD'), schedule_id
		   FROM deployments WHERE id = $1`, int64(deploymentID)).
		Scan(&d.ID, &d.Name, &d.Enabled, &d.ProjectID, &startDate, &scheduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query deployment: %w", err)
	}
	if startDate != nil {
		d.StartDate = *startDate
	}
	if scheduleID != nil {
		d.ScheduleID = id.ScheduleID(*scheduleID)
	}
	d.IncludedFactIDs, d.ExcludedFactIDs, err = s.edgeLists(ctx,
		`SELECT fact_id, excluded FROM deployment_edges WHERE deployment_id = $1 ORDER BY fact_id`,
		int64(d.ID))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) ScheduleByID(ctx context.Context, scheduleID id.ScheduleID) (*rollout.Schedule, error) {
	var sched rollout.Schedule
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM schedules WHERE id = $1`, int64(scheduleID)).
		Scan(&sched.ID, &sched.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query schedule: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT d."offset", d.duration,
		        COALESCE(array_agg(df.fact_id ORDER BY df.fact_id)
		                 FILTER (WHERE df.fact_id IS NOT NULL), '{}')
		   FROM schedule_delays d
		   LEFT JOIN schedule_delay_facts df
		     ON df.schedule_id = d.schedule_id AND df."offset" = d."offset"
		  WHERE d.schedule_id = $1
		  GROUP BY d."offset", d.duration
		  ORDER BY d."offset"`, int64(scheduleID))
	if err != nil {
		return nil, fmt.Errorf("query schedule delays: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var delay rollout.Delay
		var factIDs []int64
		if err := rows.Scan(&delay.Offset, &delay.Duration, &factIDs); err != nil {
			return nil, fmt.Errorf("scan schedule delay: %w", err)
		}
		for _, factID := range factIDs {
			delay.FactIDs = append(delay.FactIDs, id.FactID(factID))
		}
		sched.Delays = append(sched.Delays, delay)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sched, nil
}

func (s *Store) DomainByID(ctx context.Context, domainID id.DomainID) (*scope.Domain, error) {
	var d scope.Domain
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM domains WHERE id = $1`, int64(domainID)).
		Scan(&d.ID, &d.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query domain: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT fact_id, kind FROM domain_edges WHERE domain_id = $1 ORDER BY fact_id`,
		int64(domainID))
	if err != nil {
		return nil, fmt.Errorf("query domain edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var factID id.FactID
		var kind string
		if err := rows.Scan(&factID, &kind); err != nil {
			return nil, fmt.Errorf("scan domain edge: %w", err)
		}
		switch kind {
		case "excluded":
			d.ExcludedFactIDs = append(d.ExcludedFactIDs, factID)
		case "tag":
			d.TagFactIDs = append(d.TagFactIDs, factID)
		default:
			d.IncludedFactIDs = append(d.IncludedFactIDs, factID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) ScopeByID(ctx context.Context, scopeID id.ScopeID) (*scope.Scope, error) {
	var sc scope.Scope
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM scopes WHERE id = $1`, int64(scopeID)).
		Scan(&sc.ID, &sc.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query scope: %w", err)
	}
	sc.IncludedFactIDs, sc.ExcludedFactIDs, err = s.edgeLists(ctx,
		`SELECT fact_id, excluded FROM scope_edges WHERE scope_id = $1 ORDER BY fact_id`,
		int64(scopeID))
	if err != nil {
		return nil, err
	}
	return &sc, nil
}
