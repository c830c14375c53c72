package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/proforma"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_deal":         `INSERT INTO deals (id, name, status, facility, payload, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"get_deal":            `SELECT id, name, status, facility, payload, overlay, server_analysis, created_at, updated_at FROM deals WHERE id = $1`,
	"update_deal_payload": `UPDATE deals SET payload = $1, updated_at = $2 WHERE id = $3`,
	"insert_scenario":     `INSERT INTO scenarios (id, deal_id, name, notes, overrides, result, benchmark_hash, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"get_scenario":        `SELECT id, deal_id, name, notes, overrides, result, benchmark_hash, created_at, updated_at FROM scenarios WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS deals (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name            TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'prospect',
	facility        JSONB NOT NULL,
	payload         JSONB,
	overlay         JSONB,
	server_analysis JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scenarios (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	deal_id        TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	notes          TEXT NOT NULL DEFAULT '',
	overrides      JSONB NOT NULL,
	result         JSONB,
	benchmark_hash TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS invitations (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	deal_id    TEXT REFERENCES deals(id) ON DELETE CASCADE,
	email      TEXT NOT NULL,
	role       TEXT NOT NULL DEFAULT 'viewer',
	status     TEXT NOT NULL DEFAULT 'pending',
	invited_by TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);
CREATE INDEX IF NOT EXISTS idx_deals_state ON deals((facility->>'state'));
CREATE INDEX IF NOT EXISTS idx_scenarios_deal_id ON scenarios(deal_id);
CREATE INDEX IF NOT EXISTS idx_invitations_deal_id ON invitations(deal_id);
CREATE INDEX IF NOT EXISTS idx_invitations_status ON invitations(status);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateDeal(ctx context.Context, name string, facility model.Facility, payload map[string]any) (*model.Deal, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	facilityJSON, err := json.Marshal(facility)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal facility")
	}
	var payloadJSON []byte
	if payload != nil {
		if payloadJSON, err = json.Marshal(payload); err != nil {
			return nil, eris.Wrap(err, "postgres: marshal payload")
		}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO deals (id, name, status, facility, payload, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, name, string(model.DealStatusProspect), facilityJSON, payloadJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert deal")
	}

	return &model.Deal{
		ID:        id,
		Name:      name,
		Status:    model.DealStatusProspect,
		Facility:  facility,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) GetDeal(ctx context.Context, dealID string) (*model.Deal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, status, facility, payload, overlay, server_analysis, created_at, updated_at FROM deals WHERE id = $1`,
		dealID,
	)
	d, err := scanDeal(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get deal %s", dealID)
	}
	return d, nil
}

func (s *PostgresStore) ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error) {
	query := `SELECT id, name, status, facility, payload, overlay, server_analysis, created_at, updated_at FROM deals WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.State != "" {
		query += fmt.Sprintf(` AND facility->>'state' = $%d`, argIdx)
		args = append(args, filter.State)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list deals")
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan deal")
		}
		deals = append(deals, *d)
	}
	return deals, eris.Wrap(rows.Err(), "postgres: list deals iterate")
}

func (s *PostgresStore) UpdateDealStatus(ctx context.Context, dealID string, status model.DealStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update deal status %s", dealID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "deal not found: %s", dealID)
	}
	return nil
}

func (s *PostgresStore) UpdateDealPayload(ctx context.Context, dealID string, payload map[string]any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal payload")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET payload = $1, updated_at = $2 WHERE id = $3`,
		payloadJSON, time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update deal payload %s", dealID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "deal not found: %s", dealID)
	}
	return nil
}

func (s *PostgresStore) UpdateDealOverlay(ctx context.Context, dealID string, overlay map[string]float64, analysis *proforma.ServerAnalysis) error {
	overlayJSON, err := json.Marshal(overlay)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal overlay")
	}
	var analysisJSON []byte
	if analysis != nil {
		if analysisJSON, err = json.Marshal(analysis); err != nil {
			return eris.Wrap(err, "postgres: marshal server analysis")
		}
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET overlay = $1, server_analysis = $2, updated_at = $3 WHERE id = $4`,
		overlayJSON, analysisJSON, time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update deal overlay %s", dealID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "deal not found: %s", dealID)
	}
	return nil
}

func (s *PostgresStore) DeleteDeal(ctx context.Context, dealID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM deals WHERE id = $1`, dealID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete deal %s", dealID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "deal not found: %s", dealID)
	}
	return nil
}

func (s *PostgresStore) SaveScenario(ctx context.Context, sc *model.Scenario) error {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = now
	}
	sc.UpdatedAt = now

	overridesJSON, err := json.Marshal(sc.Overrides)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal overrides")
	}
	var resultJSON []byte
	if sc.Result != nil {
		if resultJSON, err = json.Marshal(sc.Result); err != nil {
			return eris.Wrap(err, "postgres: marshal scenario result")
		}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO scenarios (id, deal_id, name, notes, overrides, result, benchmark_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   name = $3, notes = $4, overrides = $5, result = $6, benchmark_hash = $7, updated_at = $9`,
		sc.ID, sc.DealID, sc.Name, sc.Notes, overridesJSON, resultJSON, sc.BenchmarkHash, sc.CreatedAt, sc.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: save scenario")
}

func (s *PostgresStore) GetScenario(ctx context.Context, scenarioID string) (*model.Scenario, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, deal_id, name, notes, overrides, result, benchmark_hash, created_at, updated_at FROM scenarios WHERE id = $1`,
		scenarioID,
	)
	sc, err := scanScenario(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get scenario %s", scenarioID)
	}
	return sc, nil
}

func (s *PostgresStore) ListScenarios(ctx context.Context, dealID string) ([]model.Scenario, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, deal_id, name, notes, overrides, result, benchmark_hash, created_at, updated_at FROM scenarios
		 WHERE deal_id = $1 ORDER BY created_at ASC`,
		dealID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scenarios")
	}
	defer rows.Close()

	var scenarios []model.Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan scenario")
		}
		scenarios = append(scenarios, *sc)
	}
	return scenarios, eris.Wrap(rows.Err(), "postgres: list scenarios iterate")
}

func (s *PostgresStore) UpdateScenarioResult(ctx context.Context, scenarioID string, result *proforma.AnalysisResult, benchmarkHash string) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal scenario result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE scenarios SET result = $1, benchmark_hash = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, benchmarkHash, time.Now().UTC(), scenarioID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update scenario result %s", scenarioID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "scenario not found: %s", scenarioID)
	}
	return nil
}

func (s *PostgresStore) DeleteScenario(ctx context.Context, scenarioID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, scenarioID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete scenario %s", scenarioID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "scenario not found: %s", scenarioID)
	}
	return nil
}

func (s *PostgresStore) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Status == "" {
		inv.Status = model.InvitationPending
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO invitations (id, deal_id, email, role, status, invited_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, nullableString(inv.DealID), inv.Email, string(inv.Role), string(inv.Status), inv.InvitedBy, now, now,
	)
	return eris.Wrap(err, "postgres: insert invitation")
}

func (s *PostgresStore) GetInvitation(ctx context.Context, invitationID string) (*model.Invitation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, deal_id, email, role, status, invited_by, created_at, updated_at FROM invitations WHERE id = $1`,
		invitationID,
	)

	var inv model.Invitation
	var dealID, invitedBy *string
	if err := row.Scan(&inv.ID, &dealID, &inv.Email, &inv.Role, &inv.Status, &invitedBy, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, eris.Wrapf(err, "postgres: get invitation %s", invitationID)
	}
	if dealID != nil {
		inv.DealID = *dealID
	}
	if invitedBy != nil {
		inv.InvitedBy = *invitedBy
	}
	return &inv, nil
}

func (s *PostgresStore) ListInvitations(ctx context.Context, dealID string) ([]model.Invitation, error) {
	query := `SELECT id, deal_id, email, role, status, invited_by, created_at, updated_at FROM invitations WHERE true`
	args := []any{}
	if dealID != "" {
		query += ` AND deal_id = $1`
		args = append(args, dealID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list invitations")
	}
	defer rows.Close()

	var invs []model.Invitation
	for rows.Next() {
		var inv model.Invitation
		var dealID, invitedBy *string
		if err := rows.Scan(&inv.ID, &dealID, &inv.Email, &inv.Role, &inv.Status, &invitedBy, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan invitation")
		}
		if dealID != nil {
			inv.DealID = *dealID
		}
		if invitedBy != nil {
			inv.InvitedBy = *invitedBy
		}
		invs = append(invs, inv)
	}
	return invs, eris.Wrap(rows.Err(), "postgres: list invitations iterate")
}

func (s *PostgresStore) UpdateInvitationStatus(ctx context.Context, invitationID string, status model.InvitationStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE invitations SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), invitationID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update invitation status %s", invitationID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "invitation not found: %s", invitationID)
	}
	return nil
}

// scanDeal reads one deal row; works for both QueryRow and Query rows.
func scanDeal(row pgx.Row) (*model.Deal, error) {
	var d model.Deal
	var facilityJSON []byte
	var payloadJSON, overlayJSON, analysisJSON *[]byte

	if err := row.Scan(&d.ID, &d.Name, &d.Status, &facilityJSON, &payloadJSON, &overlayJSON, &analysisJSON, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(facilityJSON, &d.Facility); err != nil {
		return nil, eris.Wrap(err, "unmarshal facility")
	}
	if payloadJSON != nil {
		if err := json.Unmarshal(*payloadJSON, &d.Payload); err != nil {
			return nil, eris.Wrap(err, "unmarshal payload")
		}
	}
	if overlayJSON != nil {
		if err := json.Unmarshal(*overlayJSON, &d.Overlay); err != nil {
			return nil, eris.Wrap(err, "unmarshal overlay")
		}
	}
	if analysisJSON != nil {
		d.ServerAnalysis = &proforma.ServerAnalysis{}
		if err := json.Unmarshal(*analysisJSON, d.ServerAnalysis); err != nil {
			return nil, eris.Wrap(err, "unmarshal server analysis")
		}
	}
	return &d, nil
}

func scanScenario(row pgx.Row) (*model.Scenario, error) {
	var sc model.Scenario
	var notes *string
	var overridesJSON []byte
	var resultJSON *[]byte
	var hash *string

	if err := row.Scan(&sc.ID, &sc.DealID, &sc.Name, &notes, &overridesJSON, &resultJSON, &hash, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return nil, err
	}
	if notes != nil {
		sc.Notes = *notes
	}
	if hash != nil {
		sc.BenchmarkHash = *hash
	}
	if err := json.Unmarshal(overridesJSON, &sc.Overrides); err != nil {
		return nil, eris.Wrap(err, "unmarshal overrides")
	}
	if resultJSON != nil {
		sc.Result = &proforma.AnalysisResult{}
		if err := json.Unmarshal(*resultJSON, sc.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal scenario result")
		}
	}
	return &sc, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
