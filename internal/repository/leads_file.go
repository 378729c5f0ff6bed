package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/liceolabs/prospect-crm/api/internal/entity"
)

const (
	dbFileName     = "db.json"
	backupFileName = "db.backup.json"
)

// document is the on-disk layout of the file backend: every lead plus a
// free-form settings object, in one JSON file.
type document struct {
	Leads    []entity.Lead  `json:"leads"`
	Settings map[string]any `json:"settings"`
}

// FileLeadsRepository persists leads in a single JSON document under dataDir.
// Every write first copies the current document verbatim to a single backup
// generation, then replaces the primary via an atomic temp-file rename, so a
// crash mid-write never leaves a half-written primary.
//
// Writes are serialized with a mutex: echo runs handlers concurrently, and
// an unguarded read-modify-write cycle here would drop updates.
type FileLeadsRepository struct {
	mu      sync.Mutex
	dataDir string
}

var _ LeadsRepository = (*FileLeadsRepository)(nil)

// NewFileLeadsRepository builds a file-backed store rooted at dataDir,
// creating the directory when missing.
func NewFileLeadsRepository(dataDir string) (*FileLeadsRepository, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory must not be empty")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileLeadsRepository{dataDir: dataDir}, nil
}

func (r *FileLeadsRepository) dbPath() string     { return filepath.Join(r.dataDir, dbFileName) }
func (r *FileLeadsRepository) backupPath() string { return filepath.Join(r.dataDir, backupFileName) }

// readDocument loads the primary document, falling back to the backup when
// the primary is present but undecodable. A missing primary is an empty
// store; an undecodable primary with no readable backup is ErrStoreCorrupt.
func (r *FileLeadsRepository) readDocument() (*document, error) {
	raw, err := os.ReadFile(r.dbPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Settings: map[string]any{}}, nil
		}
		return nil, fmt.Errorf("read lead store: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err == nil {
		return &doc, nil
	}

	backup, backupErr := os.ReadFile(r.backupPath())
	if backupErr != nil {
		return nil, fmt.Errorf("%w: primary undecodable and backup unreadable: %v", ErrStoreCorrupt, backupErr)
	}
	if err := json.Unmarshal(backup, &doc); err != nil {
		return nil, fmt.Errorf("%w: primary and backup both undecodable: %v", ErrStoreCorrupt, err)
	}
	return &doc, nil
}

// writeDocument snapshots the current primary into the backup slot, then
// atomically replaces the primary.
func (r *FileLeadsRepository) writeDocument(doc *document) error {
	if current, err := os.ReadFile(r.dbPath()); err == nil {
		if err := os.WriteFile(r.backupPath(), current, 0o644); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("snapshot current store: %w", err)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode lead store: %w", err)
	}

	tmp, err := os.CreateTemp(r.dataDir, "db-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmpName, r.dbPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace lead store: %w", err)
	}
	return nil
}

// GetAll returns every lead in insertion order.
func (r *FileLeadsRepository) GetAll(ctx context.Context) ([]entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readDocument()
	if err != nil {
		return nil, err
	}
	return append([]entity.Lead(nil), doc.Leads...), nil
}

// GetByID returns one lead or ErrLeadNotFound.
func (r *FileLeadsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readDocument()
	if err != nil {
		return nil, err
	}
	for i := range doc.Leads {
		if doc.Leads[i].ID == id {
			lead := doc.Leads[i]
			return &lead, nil
		}
	}
	return nil, ErrLeadNotFound
}

// FindByPhoneSuffix returns the most recently created lead whose phone
// contains the given digits.
func (r *FileLeadsRepository) FindByPhoneSuffix(ctx context.Context, digits string) (*entity.Lead, error) {
	if digits == "" {
		return nil, ErrLeadNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readDocument()
	if err != nil {
		return nil, err
	}

	var match *entity.Lead
	for i := range doc.Leads {
		lead := &doc.Leads[i]
		if lead.Phone == "" || !strings.Contains(lead.Phone, digits) {
			continue
		}
		if match == nil || lead.CreatedAt.After(match.CreatedAt) {
			match = lead
		}
	}
	if match == nil {
		return nil, ErrLeadNotFound
	}
	found := *match
	return &found, nil
}

// Create appends a lead to the document, assigning id and timestamps when
// the caller left them unset.
func (r *FileLeadsRepository) Create(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	if lead == nil {
		return nil, fmt.Errorf("lead payload is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readDocument()
	if err != nil {
		return nil, err
	}

	stored := *lead
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	if stored.Status == "" {
		stored.Status = entity.StatusNew
	}
	if stored.Tags == nil {
		stored.Tags = []string{}
	}
	if stored.History == nil {
		stored.History = []entity.Message{}
	}

	doc.Leads = append(doc.Leads, stored)
	if err := r.writeDocument(doc); err != nil {
		return nil, err
	}

	created := stored
	return &created, nil
}

// Update applies a partial patch to the lead with the given id.
func (r *FileLeadsRepository) Update(ctx context.Context, id uuid.UUID, patch LeadPatch) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readDocument()
	if err != nil {
		return nil, err
	}

	for i := range doc.Leads {
		if doc.Leads[i].ID != id {
			continue
		}
		applyPatch(&doc.Leads[i], patch, time.Now().UTC())
		if err := r.writeDocument(doc); err != nil {
			return nil, err
		}
		updated := doc.Leads[i]
		return &updated, nil
	}
	return nil, ErrLeadNotFound
}

// Delete removes the lead and, with it, its embedded history.
func (r *FileLeadsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readDocument()
	if err != nil {
		return err
	}

	kept := doc.Leads[:0]
	for _, lead := range doc.Leads {
		if lead.ID != id {
			kept = append(kept, lead)
		}
	}
	if len(kept) == len(doc.Leads) {
		return ErrLeadNotFound
	}
	doc.Leads = kept
	return r.writeDocument(doc)
}

// AppendMessage appends to the lead's history; prospect messages raise the
// unread flag.
func (r *FileLeadsRepository) AppendMessage(ctx context.Context, leadID uuid.UUID, msg entity.Message) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readDocument()
	if err != nil {
		return nil, err
	}

	for i := range doc.Leads {
		if doc.Leads[i].ID != leadID {
			continue
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}
		doc.Leads[i].History = append(doc.Leads[i].History, msg)
		if msg.Sender == entity.SenderProspect {
			doc.Leads[i].HasUnread = true
		}
		doc.Leads[i].UpdatedAt = time.Now().UTC()
		if err := r.writeDocument(doc); err != nil {
			return nil, err
		}
		appended := msg
		return &appended, nil
	}
	return nil, ErrLeadNotFound
}
