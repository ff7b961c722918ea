// ABOUTME: Relational store for projects and account balances on Postgres
// ABOUTME: Backs the pre-flight ownership and balance checks

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"blogforge-app-api/core/domain"
	coreerrors "blogforge-app-api/core/errors"
	"blogforge-app-api/core/interfaces"
	"blogforge-app-api/pkg/config"
)

// serviceRequirement is the minimum balance a service key demands.
type serviceRequirement struct {
	ServiceName string
	MinBalance  float64
}

// serviceRequirements maps the service keys this API gates on. Keys not
// listed here fail validation with an unknown-service error.
var serviceRequirements = map[string]serviceRequirement{
	"sources_generation": {
		ServiceName: "sources_generation",
		MinBalance:  3,
	},
	"outline_generation": {
		ServiceName: "outline_generation",
		MinBalance:  3,
	},
	"title_generation": {
		ServiceName: "title_generation",
		MinBalance:  3,
	},
}

// Store implements ProjectStore and BalanceService on a shared *sql.DB.
type Store struct {
	db     *sql.DB
	logger interfaces.Logger
}

// NewStore opens the connection pool and verifies it with a ping.
func NewStore(ctx context.Context, cfg config.PostgresConfig, logger interfaces.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: DSN cannot be empty")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetProject returns the project row or a NotFoundError.
func (s *Store) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	const query = `SELECT id, user_id, name, created_at FROM projects WHERE id = $1`

	var project domain.Project
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &coreerrors.NotFoundError{Resource: "project", ID: projectID}
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get project %s: %w", projectID, err)
	}
	return &project, nil
}

// ValidateServiceBalance checks the user's credits against the service's
// minimum. Unknown service keys and missing accounts fail with typed
// errors so handlers can distinguish the cases.
func (s *Store) ValidateServiceBalance(ctx context.Context, userID, serviceKey string) (*domain.BalanceStatus, error) {
	req, ok := serviceRequirements[serviceKey]
	if !ok {
		return nil, &coreerrors.ValidationError{
			Field:   "service_key",
			Message: fmt.Sprintf("service '%s' not found", serviceKey),
		}
	}

	const query = `SELECT credits, next_refill_time FROM accounts WHERE user_id = $1`

	var (
		credits    float64
		nextRefill sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&credits, &nextRefill)
	if err == sql.ErrNoRows {
		return nil, &coreerrors.NotFoundError{Resource: "account", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: account balance for %s: %w", userID, err)
	}

	if credits < req.MinBalance {
		balanceErr := &coreerrors.InsufficientBalanceError{
			ServiceKey:      serviceKey,
			RequiredBalance: req.MinBalance,
			CurrentBalance:  credits,
		}
		if nextRefill.Valid {
			t := nextRefill.Time
			balanceErr.NextRefillTime = &t
		}
		return nil, balanceErr
	}

	return &domain.BalanceStatus{
		ServiceKey:      serviceKey,
		ServiceName:     req.ServiceName,
		CurrentBalance:  credits,
		RequiredBalance: req.MinBalance,
	}, nil
}

var (
	_ interfaces.ProjectStore   = (*Store)(nil)
	_ interfaces.BalanceService = (*Store)(nil)
)
