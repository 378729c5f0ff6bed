package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/liceolabs/prospect-crm/api/internal/entity"
)

// pgxPool abstracts the pgx pool surface this package needs, so tests can
// stub it without a live database.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PGXLeadsRepository implements LeadsRepository on PostgreSQL. Leads and
// their message history live in two related tables; the database's
// transaction isolation handles concurrent writers.
type PGXLeadsRepository struct {
	pool pgxPool
}

var _ LeadsRepository = (*PGXLeadsRepository)(nil)

// NewPGXLeadsRepository wires a pgx-backed lead store.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

const leadColumns = `id, name, phone, email, source, status, priority, tags, business_unit, interest_cycle, observations, scheduled_at, has_unread, created_at, updated_at`

// GetAll returns every lead, newest first, with history attached.
func (r *PGXLeadsRepository) GetAll(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachHistory(ctx, leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// GetByID returns a lead with its conversation history or ErrLeadNotFound.
func (r *PGXLeadsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	return r.getOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
}

// FindByPhoneSuffix returns the newest lead whose phone contains the digits.
func (r *PGXLeadsRepository) FindByPhoneSuffix(ctx context.Context, digits string) (*entity.Lead, error) {
	if digits == "" {
		return nil, ErrLeadNotFound
	}
	return r.getOne(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE phone LIKE '%' || $1 || '%' ORDER BY created_at DESC LIMIT 1`,
		digits,
	)
}

func (r *PGXLeadsRepository) getOne(ctx context.Context, query string, args ...any) (*entity.Lead, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("query lead: %w", err)
	}

	leads := []entity.Lead{*lead}
	if err := r.attachHistory(ctx, leads); err != nil {
		return nil, err
	}
	return &leads[0], nil
}

// Create inserts the lead row and any seed history messages in one
// transaction, so a lead never appears without its history.
func (r *PGXLeadsRepository) Create(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	if lead == nil {
		return nil, fmt.Errorf("lead payload is nil")
	}

	stored := *lead
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.Status == "" {
		stored.Status = entity.StatusNew
	}
	if stored.Tags == nil {
		stored.Tags = []string{}
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin create lead tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
        INSERT INTO leads (id, name, phone, email, source, status, priority, tags, business_unit, interest_cycle, observations, scheduled_at, has_unread)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING `+leadColumns,
		stored.ID,
		stored.Name,
		stored.Phone,
		stored.Email,
		stored.Source,
		string(stored.Status),
		string(stored.Priority),
		stored.Tags,
		stored.BusinessUnit,
		stored.InterestCycle,
		stored.Observations,
		timeOrNil(stored.ScheduledAt),
		stored.HasUnread,
	)
	created, err := scanLead(row)
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}

	for _, msg := range stored.History {
		if err := insertMessage(ctx, tx, created.ID, msg); err != nil {
			return nil, err
		}
		created.History = append(created.History, msg)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create lead tx: %w", err)
	}
	if created.History == nil {
		created.History = []entity.Message{}
	}
	return created, nil
}

// Update patches lead attributes by id. History is not reachable through
// this path; it only ever grows via AppendMessage.
func (r *PGXLeadsRepository) Update(ctx context.Context, id uuid.UUID, patch LeadPatch) (*entity.Lead, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	addClause := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.Name != nil {
		addClause("name", *patch.Name)
	}
	if patch.Phone != nil {
		addClause("phone", *patch.Phone)
	}
	if patch.Email != nil {
		addClause("email", *patch.Email)
	}
	if patch.Source != nil {
		addClause("source", *patch.Source)
	}
	if patch.Status != nil {
		addClause("status", string(*patch.Status))
	}
	if patch.Priority != nil {
		addClause("priority", string(*patch.Priority))
	}
	if patch.Tags != nil {
		addClause("tags", *patch.Tags)
	}
	if patch.BusinessUnit != nil {
		addClause("business_unit", *patch.BusinessUnit)
	}
	if patch.InterestCycle != nil {
		addClause("interest_cycle", *patch.InterestCycle)
	}
	if patch.Observations != nil {
		addClause("observations", *patch.Observations)
	}
	if patch.ScheduledAt != nil {
		addClause("scheduled_at", *patch.ScheduledAt)
	} else if patch.ClearSchedule {
		setClauses = append(setClauses, "scheduled_at = NULL")
	}
	if patch.HasUnread != nil {
		addClause("has_unread", *patch.HasUnread)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d RETURNING `+leadColumns, strings.Join(setClauses, ", "), idx)
	row := r.pool.QueryRow(ctx, query, args...)
	updated, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("update lead: %w", err)
	}

	leads := []entity.Lead{*updated}
	if err := r.attachHistory(ctx, leads); err != nil {
		return nil, err
	}
	return &leads[0], nil
}

// Delete removes the lead row; message rows go with it via the FK cascade.
func (r *PGXLeadsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// AppendMessage inserts a history row and flips the unread flag for
// prospect messages, atomically.
func (r *PGXLeadsRepository) AppendMessage(ctx context.Context, leadID uuid.UUID, msg entity.Message) (*entity.Message, error) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin append message tx: %w", err)
	}
	defer tx.Rollback(ctx)

	markUnread := msg.Sender == entity.SenderProspect
	tag, err := tx.Exec(ctx,
		`UPDATE leads SET has_unread = has_unread OR $2, updated_at = NOW() WHERE id = $1`,
		leadID, markUnread,
	)
	if err != nil {
		return nil, fmt.Errorf("touch lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrLeadNotFound
	}

	if err := insertMessage(ctx, tx, leadID, msg); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit append message tx: %w", err)
	}
	appended := msg
	return &appended, nil
}

func insertMessage(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, msg entity.Message) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO messages (id, lead_id, sender, content, sent_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, leadID, string(msg.Sender), msg.Content, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert message %s: %w", msg.ID, err)
	}
	return nil
}

// attachHistory loads the messages for the given leads in one query and
// distributes them in chronological order.
func (r *PGXLeadsRepository) attachHistory(ctx context.Context, leads []entity.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(leads))
	byID := make(map[uuid.UUID]*entity.Lead, len(leads))
	for i := range leads {
		leads[i].History = []entity.Message{}
		ids = append(ids, leads[i].ID)
		byID[leads[i].ID] = &leads[i]
	}

	rows, err := r.pool.Query(ctx,
		`SELECT lead_id, id, sender, content, sent_at FROM messages WHERE lead_id = ANY($1) ORDER BY sent_at ASC, id ASC`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			leadID uuid.UUID
			msg    entity.Message
			sender string
		)
		if err := rows.Scan(&leadID, &msg.ID, &sender, &msg.Content, &msg.Timestamp); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		msg.Sender = entity.MessageSender(sender)
		if lead, ok := byID[leadID]; ok {
			lead.History = append(lead.History, msg)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate messages: %w", err)
	}
	return nil
}

func scanLead(row pgx.Row) (*entity.Lead, error) {
	var (
		lead          entity.Lead
		status        string
		priority      sql.NullString
		businessUnit  sql.NullString
		interestCycle sql.NullString
		observations  sql.NullString
		email         sql.NullString
		scheduledAt   sql.NullTime
	)

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&email,
		&lead.Source,
		&status,
		&priority,
		&lead.Tags,
		&businessUnit,
		&interestCycle,
		&observations,
		&scheduledAt,
		&lead.HasUnread,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Status = entity.LeadStatus(status)
	if priority.Valid {
		lead.Priority = entity.LeadPriority(priority.String)
	}
	if email.Valid {
		lead.Email = email.String
	}
	if businessUnit.Valid {
		lead.BusinessUnit = businessUnit.String
	}
	if interestCycle.Valid {
		lead.InterestCycle = interestCycle.String
	}
	if observations.Valid {
		lead.Observations = observations.String
	}
	if scheduledAt.Valid {
		ts := scheduledAt.Time
		lead.ScheduledAt = &ts
	}
	if lead.Tags == nil {
		lead.Tags = []string{}
	}
	return &lead, nil
}

func scanLeads(rows pgx.Rows) ([]entity.Lead, error) {
	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func timeOrNil(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
