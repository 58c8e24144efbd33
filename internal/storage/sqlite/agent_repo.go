package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrAgentNotFound = errors.New("agent not found")

// Agent is one known monitor instance. Only presence is recorded here; the
// snapshots themselves are never persisted.
type Agent struct {
	ID        string    `json:"id"`
	Hostname  string    `json:"hostname"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

type AgentRepository struct {
	db *sql.DB
}

func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// Touch records that an agent reported at seenAt, creating the row on first
// contact.
func (r *AgentRepository) Touch(ctx context.Context, id, hostname string, seenAt time.Time) error {
	query := `
	INSERT INTO agents (id, hostname, first_seen, last_seen)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET hostname = excluded.hostname, last_seen = excluded.last_seen`

	if _, err := r.db.ExecContext(ctx, query, id, hostname, seenAt, seenAt); err != nil {
		return fmt.Errorf("failed to upsert agent: %w", err)
	}
	return nil
}

func (r *AgentRepository) GetByID(ctx context.Context, id string) (*Agent, error) {
	query := `SELECT id, hostname, first_seen, last_seen FROM agents WHERE id = ?`

	var agent Agent
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&agent.ID, &agent.Hostname, &agent.FirstSeen, &agent.LastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}

	return &agent, nil
}

func (r *AgentRepository) List(ctx context.Context) ([]*Agent, error) {
	query := `SELECT id, hostname, first_seen, last_seen FROM agents ORDER BY last_seen DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		var agent Agent
		if err := rows.Scan(&agent.ID, &agent.Hostname, &agent.FirstSeen, &agent.LastSeen); err != nil {
			return nil, err
		}
		agents = append(agents, &agent)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return agents, nil
}
