// Package index holds the per-document in-memory vector indices and the
// process-wide registry that owns them.
package index

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/veridoc-ai/veridoc/internal/domain"
)

// DefaultIngestDeadline bounds how long an entry may stay Ingesting
// before the next observer reclaims it as Failed. Covers ingests whose
// owner crashed without calling Commit or Fail.
const DefaultIngestDeadline = 5 * time.Minute

// Snapshot is a fully-committed, immutable index for one document.
// Readers hold a reference to a Snapshot and need no further
// synchronization; a snapshot is never mutated after Commit.
type Snapshot struct {
	DocumentID  string
	Chunks      []*domain.Chunk
	Dimensions  int
	CommittedAt time.Time
}

type entry struct {
	state      domain.DocumentState
	failReason string
	token      string
	startedAt  time.Time
	snapshot   *Snapshot
	createdAt  time.Time
	updatedAt  time.Time
}

// Registry maps document identifiers to their index entries. The
// registry lock guards only the map and entry state transitions, all of
// which are in-memory and fast; embedding work happens outside any lock
// and rejoins through Commit with the token handed out by Create, so
// ingestion of one document never blocks operations on another.
type Registry struct {
	mu             sync.Mutex
	entries        map[string]*entry
	ingestDeadline time.Duration
	now            func() time.Time
}

// NewRegistry creates an empty registry with the default ingest deadline.
func NewRegistry() *Registry {
	return NewRegistryWithDeadline(DefaultIngestDeadline)
}

// NewRegistryWithDeadline creates an empty registry with an explicit
// ingest reclamation deadline.
func NewRegistryWithDeadline(deadline time.Duration) *Registry {
	if deadline <= 0 {
		deadline = DefaultIngestDeadline
	}
	return &Registry{
		entries:        make(map[string]*entry),
		ingestDeadline: deadline,
		now:            time.Now,
	}
}

// Create registers documentID in state Ingesting and returns an ingest
// token. Only the holder of the token may Commit or Fail the entry.
// Fails with ALREADY_EXISTS when the document is Ready or another
// ingestion is still in flight; a Failed (or reclaimed) entry may be
// re-created.
func (r *Registry) Create(documentID string) (string, error) {
	if documentID == "" {
		return "", domain.ErrEmptyDocumentID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.entries[documentID]; ok {
		r.reclaimLocked(e, now)
		switch e.state {
		case domain.DocumentStateIngesting:
			return "", domain.ErrIngestInProgress
		case domain.DocumentStateReady:
			return "", domain.ErrDocumentExists
		}
		// Failed: fall through and retry.
	}

	token := uuid.NewString()
	existing := r.entries[documentID]
	e := &entry{
		state:     domain.DocumentStateIngesting,
		token:     token,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
	if existing != nil {
		e.createdAt = existing.createdAt
	}
	r.entries[documentID] = e
	return token, nil
}

// Commit atomically transitions documentID to Ready with its final
// chunk set. Only the ingesting caller holding the Create token may
// commit. All chunks must share one embedding dimensionality.
func (r *Registry) Commit(documentID, token string, chunks []*domain.Chunk) (*Snapshot, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrNoExtractableContent
	}
	dims := len(chunks[0].Embedding)
	if dims == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeIngestion, "chunk embedding is empty")
	}
	for _, c := range chunks {
		if len(c.Embedding) != dims {
			return nil, domain.NewDomainError(domain.ErrCodeIngestion, "chunks have mixed embedding dimensions")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[documentID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	if e.state != domain.DocumentStateIngesting || e.token != token {
		return nil, domain.NewDomainError(domain.ErrCodeInternalError, "commit rejected: caller does not own this ingestion")
	}

	snap := &Snapshot{
		DocumentID:  documentID,
		Chunks:      chunks,
		Dimensions:  dims,
		CommittedAt: r.now(),
	}
	e.state = domain.DocumentStateReady
	e.failReason = ""
	e.snapshot = snap
	e.updatedAt = snap.CommittedAt
	return snap, nil
}

// Fail transitions documentID to Failed with a descriptive reason.
// Subsequent queries surface the reason; a later Create may retry.
func (r *Registry) Fail(documentID, token, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[documentID]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	if e.state != domain.DocumentStateIngesting || e.token != token {
		return domain.NewDomainError(domain.ErrCodeInternalError, "fail rejected: caller does not own this ingestion")
	}

	e.state = domain.DocumentStateFailed
	e.failReason = reason
	e.snapshot = nil
	e.updatedAt = r.now()
	return nil
}

// Get returns the committed snapshot for documentID. A document that is
// missing yields NOT_FOUND; one that is Ingesting or Failed yields
// NOT_READY with the failure reason when known. A partially-built index
// is never returned.
func (r *Registry) Get(documentID string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[documentID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	r.reclaimLocked(e, r.now())

	switch e.state {
	case domain.DocumentStateReady:
		return e.snapshot, nil
	case domain.DocumentStateIngesting:
		return nil, domain.NewDomainError(domain.ErrCodeNotReady, "document is still ingesting")
	case domain.DocumentStateFailed:
		return nil, domain.NewDomainError(domain.ErrCodeNotReady, "document ingestion failed: "+e.failReason)
	default:
		return nil, domain.ErrDocumentNotFound
	}
}

// Describe reports the lifecycle state of documentID without touching
// its snapshot.
func (r *Registry) Describe(documentID string) (domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[documentID]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	r.reclaimLocked(e, r.now())

	return domain.Document{
		ID:         documentID,
		State:      e.state,
		FailReason: e.failReason,
		CreatedAt:  e.createdAt,
		UpdatedAt:  e.updatedAt,
	}, nil
}

// Remove deletes the entry for documentID, releasing its chunks and
// vectors. Called when the owning document is deleted upstream.
func (r *Registry) Remove(documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, documentID)
}

// reclaimLocked flips an expired Ingesting entry to Failed so that an
// abandoned ingestion cannot wedge its document forever. Caller holds
// the registry lock.
func (r *Registry) reclaimLocked(e *entry, now time.Time) {
	if e.state != domain.DocumentStateIngesting {
		return
	}
	if now.Sub(e.startedAt) < r.ingestDeadline {
		return
	}
	e.state = domain.DocumentStateFailed
	e.failReason = domain.ErrIngestTimedOut.Message
	e.snapshot = nil
	e.updatedAt = now
}
