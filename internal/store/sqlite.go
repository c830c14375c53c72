package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/proforma"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS deals (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'prospect',
	facility        TEXT NOT NULL,
	payload         TEXT,
	overlay         TEXT,
	server_analysis TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS scenarios (
	id             TEXT PRIMARY KEY,
	deal_id        TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	notes          TEXT NOT NULL DEFAULT '',
	overrides      TEXT NOT NULL,
	result         TEXT,
	benchmark_hash TEXT,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS invitations (
	id         TEXT PRIMARY KEY,
	deal_id    TEXT REFERENCES deals(id) ON DELETE CASCADE,
	email      TEXT NOT NULL,
	role       TEXT NOT NULL DEFAULT 'viewer',
	status     TEXT NOT NULL DEFAULT 'pending',
	invited_by TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);
CREATE INDEX IF NOT EXISTS idx_scenarios_deal_id ON scenarios(deal_id);
CREATE INDEX IF NOT EXISTS idx_invitations_deal_id ON invitations(deal_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateDeal(ctx context.Context, name string, facility model.Facility, payload map[string]any) (*model.Deal, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	facilityJSON, err := json.Marshal(facility)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal facility")
	}
	var payloadText any
	if payload != nil {
		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal payload")
		}
		payloadText = string(payloadJSON)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deals (id, name, status, facility, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, string(model.DealStatusProspect), string(facilityJSON), payloadText, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert deal")
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

func (s *SQLiteStore) GetDeal(ctx context.Context, dealID string) (*model.Deal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, status, facility, payload, overlay, server_analysis, created_at, updated_at FROM deals WHERE id = ?`,
		dealID,
	)
	d, err := scanDealText(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get deal %s", dealID)
	}
	return d, nil
}

func (s *SQLiteStore) ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error) {
	query := `SELECT id, name, status, facility, payload, overlay, server_analysis, created_at, updated_at FROM deals WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.State != "" {
		query += ` AND json_extract(facility, '$.state') = ?`
		args = append(args, filter.State)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list deals")
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		d, err := scanDealText(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan deal")
		}
		deals = append(deals, *d)
	}
	return deals, eris.Wrap(rows.Err(), "sqlite: list deals iterate")
}

func (s *SQLiteStore) UpdateDealStatus(ctx context.Context, dealID string, status model.DealStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update deal status %s", dealID)
	}
	return checkRowsAffected(res, "deal", dealID)
}

func (s *SQLiteStore) UpdateDealPayload(ctx context.Context, dealID string, payload map[string]any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal payload")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET payload = ?, updated_at = ? WHERE id = ?`,
		string(payloadJSON), time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update deal payload %s", dealID)
	}
	return checkRowsAffected(res, "deal", dealID)
}

func (s *SQLiteStore) UpdateDealOverlay(ctx context.Context, dealID string, overlay map[string]float64, analysis *proforma.ServerAnalysis) error {
	overlayJSON, err := json.Marshal(overlay)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal overlay")
	}
	var analysisText any
	if analysis != nil {
		analysisJSON, err := json.Marshal(analysis)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal server analysis")
		}
		analysisText = string(analysisJSON)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET overlay = ?, server_analysis = ?, updated_at = ? WHERE id = ?`,
		string(overlayJSON), analysisText, time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update deal overlay %s", dealID)
	}
	return checkRowsAffected(res, "deal", dealID)
}

func (s *SQLiteStore) DeleteDeal(ctx context.Context, dealID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deals WHERE id = ?`, dealID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete deal %s", dealID)
	}
	return checkRowsAffected(res, "deal", dealID)
}

func (s *SQLiteStore) SaveScenario(ctx context.Context, sc *model.Scenario) error {
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
		return eris.Wrap(err, "sqlite: marshal overrides")
	}
	var resultText any
	if sc.Result != nil {
		resultJSON, err := json.Marshal(sc.Result)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal scenario result")
		}
		resultText = string(resultJSON)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scenarios (id, deal_id, name, notes, overrides, result, benchmark_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name, notes = excluded.notes, overrides = excluded.overrides,
		   result = excluded.result, benchmark_hash = excluded.benchmark_hash, updated_at = excluded.updated_at`,
		sc.ID, sc.DealID, sc.Name, sc.Notes, string(overridesJSON), resultText, sc.BenchmarkHash, sc.CreatedAt, sc.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: save scenario")
}

func (s *SQLiteStore) GetScenario(ctx context.Context, scenarioID string) (*model.Scenario, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, deal_id, name, notes, overrides, result, benchmark_hash, created_at, updated_at FROM scenarios WHERE id = ?`,
		scenarioID,
	)
	sc, err := scanScenarioText(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get scenario %s", scenarioID)
	}
	return sc, nil
}

func (s *SQLiteStore) ListScenarios(ctx context.Context, dealID string) ([]model.Scenario, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, deal_id, name, notes, overrides, result, benchmark_hash, created_at, updated_at FROM scenarios
		 WHERE deal_id = ? ORDER BY created_at ASC`,
		dealID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scenarios")
	}
	defer rows.Close()

	var scenarios []model.Scenario
	for rows.Next() {
		sc, err := scanScenarioText(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan scenario")
		}
		scenarios = append(scenarios, *sc)
	}
	return scenarios, eris.Wrap(rows.Err(), "sqlite: list scenarios iterate")
}

func (s *SQLiteStore) UpdateScenarioResult(ctx context.Context, scenarioID string, result *proforma.AnalysisResult, benchmarkHash string) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal scenario result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE scenarios SET result = ?, benchmark_hash = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), benchmarkHash, time.Now().UTC(), scenarioID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update scenario result %s", scenarioID)
	}
	return checkRowsAffected(res, "scenario", scenarioID)
}

func (s *SQLiteStore) DeleteScenario(ctx context.Context, scenarioID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, scenarioID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete scenario %s", scenarioID)
	}
	return checkRowsAffected(res, "scenario", scenarioID)
}

func (s *SQLiteStore) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Status == "" {
		inv.Status = model.InvitationPending
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invitations (id, deal_id, email, role, status, invited_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, nullableString(inv.DealID), inv.Email, string(inv.Role), string(inv.Status), inv.InvitedBy, now, now,
	)
	return eris.Wrap(err, "sqlite: insert invitation")
}

func (s *SQLiteStore) GetInvitation(ctx context.Context, invitationID string) (*model.Invitation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, deal_id, email, role, status, invited_by, created_at, updated_at FROM invitations WHERE id = ?`,
		invitationID,
	)

	var inv model.Invitation
	var dealID, invitedBy sql.NullString
	if err := row.Scan(&inv.ID, &dealID, &inv.Email, &inv.Role, &inv.Status, &invitedBy, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, eris.Wrapf(err, "sqlite: get invitation %s", invitationID)
	}
	inv.DealID = dealID.String
	inv.InvitedBy = invitedBy.String
	return &inv, nil
}

func (s *SQLiteStore) ListInvitations(ctx context.Context, dealID string) ([]model.Invitation, error) {
	query := `SELECT id, deal_id, email, role, status, invited_by, created_at, updated_at FROM invitations WHERE 1=1`
	var args []any
	if dealID != "" {
		query += ` AND deal_id = ?`
		args = append(args, dealID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list invitations")
	}
	defer rows.Close()

	var invs []model.Invitation
	for rows.Next() {
		var inv model.Invitation
		var dealID, invitedBy sql.NullString
		if err := rows.Scan(&inv.ID, &dealID, &inv.Email, &inv.Role, &inv.Status, &invitedBy, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan invitation")
		}
		inv.DealID = dealID.String
		inv.InvitedBy = invitedBy.String
		invs = append(invs, inv)
	}
	return invs, eris.Wrap(rows.Err(), "sqlite: list invitations iterate")
}

func (s *SQLiteStore) UpdateInvitationStatus(ctx context.Context, invitationID string, status model.InvitationStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invitations SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), invitationID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update invitation status %s", invitationID)
	}
	return checkRowsAffected(res, "invitation", invitationID)
}

// helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDealText(row rowScanner) (*model.Deal, error) {
	var d model.Deal
	var facilityJSON string
	var payloadJSON, overlayJSON, analysisJSON sql.NullString

	if err := row.Scan(&d.ID, &d.Name, &d.Status, &facilityJSON, &payloadJSON, &overlayJSON, &analysisJSON, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(facilityJSON), &d.Facility); err != nil {
		return nil, eris.Wrap(err, "unmarshal facility")
	}
	if payloadJSON.Valid {
		if err := json.Unmarshal([]byte(payloadJSON.String), &d.Payload); err != nil {
			return nil, eris.Wrap(err, "unmarshal payload")
		}
	}
	if overlayJSON.Valid {
		if err := json.Unmarshal([]byte(overlayJSON.String), &d.Overlay); err != nil {
			return nil, eris.Wrap(err, "unmarshal overlay")
		}
	}
	if analysisJSON.Valid {
		d.ServerAnalysis = &proforma.ServerAnalysis{}
		if err := json.Unmarshal([]byte(analysisJSON.String), d.ServerAnalysis); err != nil {
			return nil, eris.Wrap(err, "unmarshal server analysis")
		}
	}
	return &d, nil
}

func scanScenarioText(row rowScanner) (*model.Scenario, error) {
	var sc model.Scenario
	var overridesJSON string
	var notes, resultJSON, hash sql.NullString

	if err := row.Scan(&sc.ID, &sc.DealID, &sc.Name, &notes, &overridesJSON, &resultJSON, &hash, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return nil, err
	}
	sc.Notes = notes.String
	sc.BenchmarkHash = hash.String
	if err := json.Unmarshal([]byte(overridesJSON), &sc.Overrides); err != nil {
		return nil, eris.Wrap(err, "unmarshal overrides")
	}
	if resultJSON.Valid {
		sc.Result = &proforma.AnalysisResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), sc.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal scenario result")
		}
	}
	return &sc, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s not found: %s", entity, id)
	}
	return nil
}
