// Package graph stores plans in Neo4j as a graph: (:Plan)-[:HAS_TASK]->(:Task) with
// (:Task)-[:DEPENDS_ON]->(:Task) edges for each dependency.
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/storage"
)

// Config holds connection settings.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Store persists plans in Neo4j.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ storage.Store = (*Store)(nil)

// Open connects to Neo4j, verifies connectivity and ensures the plan id
// constraint exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, fmt.Errorf("neo4j uri is required")
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}

	s := &Store{driver: driver, database: cfg.Database}
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, "CREATE CONSTRAINT plan_id IF NOT EXISTS FOR (p:Plan) REQUIRE p.id IS UNIQUE", nil)
		return nil, err
	})
	if err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("ensure plan constraint: %w", err)
	}
	return s, nil
}

// Close closes the driver.
func (s *Store) Close() error {
	if s == nil || s.driver == nil {
		return nil
	}
	return s.driver.Close(context.Background())
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	tasks := make([]map[string]any, len(p.Tasks))
	for i, t := range p.Tasks {
		deps := make([]int64, len(t.Dependencies))
		for j, d := range t.Dependencies {
			deps[j] = int64(d)
		}
		row := map[string]any{
			"id":             int64(t.ID),
			"name":           t.Name,
			"description":    t.Description,
			"priority":       string(t.Priority),
			"estimated_days": t.EstimatedDays,
			"status":         string(t.Status),
			"dependencies":   deps,
			"duration_value": nil,
			"duration_unit":  nil,
		}
		if t.EstimatedDuration != nil {
			row["duration_value"] = t.EstimatedDuration.Value
			row["duration_unit"] = t.EstimatedDuration.Unit
		}
		tasks[i] = row
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (p:Plan {id: $id}) RETURN p.id", map[string]any{"id": p.ID})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			return nil, storage.ErrAlreadyExists
		}

		_, err = tx.Run(ctx,
			"CREATE (p:Plan {id: $id, goal: $goal, created_at: $created_at}) "+
				"WITH p UNWIND $tasks AS task "+
				"CREATE (p)-[:HAS_TASK]->(:Task {plan_id: $id, id: task.id, name: task.name, "+
				"description: task.description, priority: task.priority, estimated_days: task.estimated_days, "+
				"duration_value: task.duration_value, duration_unit: task.duration_unit, "+
				"status: task.status, dependencies: task.dependencies})",
			map[string]any{
				"id":         p.ID,
				"goal":       p.Goal,
				"created_at": p.CreatedAt.UTC().UnixMilli(),
				"tasks":      tasks,
			},
		)
		if err != nil {
			return nil, err
		}

		_, err = tx.Run(ctx,
			"MATCH (:Plan {id: $id})-[:HAS_TASK]->(t:Task) "+
				"UNWIND t.dependencies AS dep "+
				"MATCH (:Plan {id: $id})-[:HAS_TASK]->(d:Task {id: dep}) "+
				"CREATE (t)-[:DEPENDS_ON]->(d)",
			map[string]any{"id": p.ID},
		)
		return nil, err
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return storage.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (s *Store) ListPlans(ctx context.Context) ([]plan.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (p:Plan) "+
				"OPTIONAL MATCH (p)-[:HAS_TASK]->(t:Task) "+
				"RETURN p.id AS id, p.goal AS goal, p.created_at AS created_at, count(t) AS task_count "+
				"ORDER BY created_at, id",
			nil,
		)
		if err != nil {
			return nil, err
		}

		summaries := []plan.Summary{}
		for res.Next(ctx) {
			rec := res.Record().AsMap()
			summaries = append(summaries, plan.Summary{
				ID:        asString(rec["id"]),
				Goal:      asString(rec["goal"]),
				CreatedAt: time.UnixMilli(asInt64(rec["created_at"])).UTC(),
				TaskCount: int(asInt64(rec["task_count"])),
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return summaries, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return result.([]plan.Summary), nil
}

func (s *Store) GetPlan(ctx context.Context, id string) (*plan.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (p:Plan {id: $id}) RETURN p.goal AS goal, p.created_at AS created_at",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, storage.ErrNotFound
		}
		rec := res.Record().AsMap()
		p := &plan.Plan{
			ID:        id,
			Goal:      asString(rec["goal"]),
			CreatedAt: time.UnixMilli(asInt64(rec["created_at"])).UTC(),
			Tasks:     []plan.Task{},
		}

		res, err = tx.Run(ctx,
			"MATCH (:Plan {id: $id})-[:HAS_TASK]->(t:Task) "+
				"RETURN t.id AS id, t.name AS name, t.description AS description, t.priority AS priority, "+
				"t.estimated_days AS estimated_days, t.duration_value AS duration_value, "+
				"t.duration_unit AS duration_unit, t.status AS status, t.dependencies AS dependencies "+
				"ORDER BY id",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			p.Tasks = append(p.Tasks, taskFromRecord(res.Record().AsMap()))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return p, nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return result.(*plan.Plan), nil
}

func taskFromRecord(rec map[string]any) plan.Task {
	t := plan.Task{
		ID:            int(asInt64(rec["id"])),
		Name:          asString(rec["name"]),
		Description:   asString(rec["description"]),
		Priority:      plan.Priority(asString(rec["priority"])),
		EstimatedDays: asFloat64(rec["estimated_days"]),
		Status:        plan.Status(asString(rec["status"])),
		Dependencies:  []int{},
	}
	if unit, ok := rec["duration_unit"].(string); ok {
		t.EstimatedDuration = &plan.Duration{Value: asFloat64(rec["duration_value"]), Unit: unit}
	}
	if deps, ok := rec["dependencies"].([]any); ok {
		for _, d := range deps {
			t.Dependencies = append(t.Dependencies, int(asInt64(d)))
		}
	}
	return t
}

func (s *Store) UpdateTaskStatus(ctx context.Context, planID string, taskID int, status plan.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (p:Plan {id: $plan_id}) "+
				"OPTIONAL MATCH (p)-[:HAS_TASK]->(t:Task {id: $task_id}) "+
				"SET t.status = $status "+
				"RETURN t IS NOT NULL AS found",
			map[string]any{"plan_id": planID, "task_id": int64(taskID), "status": string(status)},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, storage.ErrNotFound
		}
		if found, _ := res.Record().AsMap()["found"].(bool); !found {
			return nil, storage.ErrTaskNotFound
		}
		return nil, nil
	})
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return storage.ErrNotFound
	case errors.Is(err, storage.ErrTaskNotFound):
		return storage.ErrTaskNotFound
	case err != nil:
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

func (s *Store) DeletePlan(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (p:Plan {id: $id}) "+
				"OPTIONAL MATCH (p)-[:HAS_TASK]->(t:Task) "+
				"DETACH DELETE t, p "+
				"RETURN count(DISTINCT p) AS deleted",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) && asInt64(res.Record().AsMap()["deleted"]) > 0 {
			return nil, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, storage.ErrNotFound
	})
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func asFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}
