package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/liceolabs/prospect-crm/api/internal/entity"
)

var testLeadID = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")

func leadScan(name string) func(dest ...any) error {
	return func(dest ...any) error {
		now := time.Now()
		*dest[0].(*uuid.UUID) = testLeadID
		*dest[1].(*string) = name
		*dest[2].(*string) = "5512345678"
		*dest[3].(*sql.NullString) = sql.NullString{String: "ana@example.com", Valid: true}
		*dest[4].(*string) = "Facebook"
		*dest[5].(*string) = string(entity.StatusContacted)
		*dest[6].(*sql.NullString) = sql.NullString{String: string(entity.PriorityHot), Valid: true}
		*dest[7].(*[]string) = []string{"imported"}
		*dest[8].(*sql.NullString) = sql.NullString{}
		*dest[9].(*sql.NullString) = sql.NullString{}
		*dest[10].(*sql.NullString) = sql.NullString{}
		*dest[11].(*sql.NullTime) = sql.NullTime{}
		*dest[12].(*bool) = false
		*dest[13].(*time.Time) = now
		*dest[14].(*time.Time) = now
		return nil
	}
}

func messageScan(id, sender, content string) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*uuid.UUID) = testLeadID
		*dest[1].(*string) = id
		*dest[2].(*string) = sender
		*dest[3].(*string) = content
		*dest[4].(*time.Time) = time.Now()
		return nil
	}
}

func TestPGXLeadsRepository_GetAll(t *testing.T) {
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			if strings.Contains(query, "FROM messages") {
				return &stubRows{scans: []func(dest ...any) error{
					messageScan("01J0000000000000000000000T", "prospect", "Hola"),
				}}, nil
			}
			return &stubRows{scans: []func(dest ...any) error{leadScan("Ana Torres")}}, nil
		},
	}}

	leads, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(leads))
	}
	lead := leads[0]
	if lead.Name != "Ana Torres" || lead.Status != entity.StatusContacted || lead.Priority != entity.PriorityHot {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if len(lead.History) != 1 || lead.History[0].Sender != entity.SenderProspect {
		t.Fatalf("expected attached history, got %+v", lead.History)
	}
}

func TestPGXLeadsRepository_GetByID_NotFound(t *testing.T) {
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}}

	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPGXLeadsRepository_FindByPhoneSuffix_EmptyDigits(t *testing.T) {
	repo := &PGXLeadsRepository{pool: &stubPool{}}

	if _, err := repo.FindByPhoneSuffix(context.Background(), ""); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPGXLeadsRepository_Create(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: leadScan("Ana Torres")}
		},
	}
	repo := &PGXLeadsRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
			return tx, nil
		},
	}}

	created, err := repo.Create(context.Background(), &entity.Lead{Name: "Ana Torres", Phone: "5512345678"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != testLeadID {
		t.Fatalf("unexpected id: %s", created.ID)
	}
	if created.History == nil {
		t.Fatalf("expected non-nil history")
	}
	if !tx.committed {
		t.Fatalf("expected transaction commit")
	}
}

func TestPGXLeadsRepository_Update_BuildsPartialSet(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotQuery = query
			gotArgs = args
			return &stubRow{scan: leadScan("Ana Torres")}
		},
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{}, nil
		},
	}}

	status := entity.StatusScheduled
	if _, err := repo.Update(context.Background(), testLeadID, LeadPatch{Status: &status, ClearSchedule: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "status = $1") {
		t.Fatalf("expected status clause, got %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "scheduled_at = NULL") {
		t.Fatalf("expected schedule clear clause, got %q", gotQuery)
	}
	if strings.Contains(gotQuery, "name =") {
		t.Fatalf("unset fields must not be patched: %q", gotQuery)
	}
	// status plus the trailing id argument
	if len(gotArgs) != 2 {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
}

func TestPGXLeadsRepository_Update_NotFound(t *testing.T) {
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}}

	name := "Nobody"
	if _, err := repo.Update(context.Background(), uuid.New(), LeadPatch{Name: &name}); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPGXLeadsRepository_Delete(t *testing.T) {
	repo := &PGXLeadsRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 1"), nil
		},
	}}

	if err := repo.Delete(context.Background(), testLeadID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.pool = &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	if err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPGXLeadsRepository_AppendMessage(t *testing.T) {
	tx := &stubTx{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			if strings.Contains(query, "UPDATE leads") {
				return pgconn.NewCommandTag("UPDATE 1"), nil
			}
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	repo := &PGXLeadsRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
			return tx, nil
		},
	}}

	msg, err := repo.AppendMessage(context.Background(), testLeadID, entity.Message{
		ID:      "01J0000000000000000000000T",
		Sender:  entity.SenderProspect,
		Content: "Hola",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Timestamp.IsZero() {
		t.Fatalf("expected timestamp assigned")
	}
	if !tx.committed {
		t.Fatalf("expected transaction commit")
	}
}

func TestPGXLeadsRepository_AppendMessage_LeadMissing(t *testing.T) {
	tx := &stubTx{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}
	repo := &PGXLeadsRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
			return tx, nil
		},
	}}

	if _, err := repo.AppendMessage(context.Background(), uuid.New(), entity.Message{Sender: entity.SenderProspect}); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
	if tx.committed {
		t.Fatalf("transaction must not commit when the lead is missing")
	}
	if !tx.rolledBack {
		t.Fatalf("expected rollback")
	}
}
