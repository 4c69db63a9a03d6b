package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"masterfile/internal/evidence/adapters"
	"masterfile/internal/evidence/cache"
	"masterfile/internal/evidence/metrics"
	"masterfile/internal/fieldreg"
	"masterfile/internal/normalize"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	"masterfile/pkg/platform/circuit"
	"masterfile/pkg/requestcontext"
)

// currentSchemaVersion is stamped onto newly ingested evidence. Bump when a
// provider payload shape changes incompatibly.
const currentSchemaVersion = 1

// CandidateApplier runs conflict resolution for a batch of candidates against
// one entity. Implemented by the reconciliation service; evidence depends on
// the interface so replay does not pull the whole resolution engine in.
type CandidateApplier interface {
	ApplyCandidates(ctx context.Context, entityID id.EntityID, candidates []normalize.Candidate) (applied int, err error)
}

// DocumentRef points at a stored document: the blob URL destined for a
// document-reference field, plus the evidence row that records the upload.
type DocumentRef struct {
	URL        string
	EvidenceID id.EvidenceID
	FieldNo    int
}

// ReplayResult summarizes one replay run over an entity's evidence history.
type ReplayResult struct {
	EvidenceSeen int `json:"evidence_seen"`
	Candidates   int `json:"candidates"`
	Applied      int `json:"applied"`
	Skipped      int `json:"skipped"`
}

// Service owns evidence intake: validation, append-only persistence,
// registry fetches with caching and circuit breaking, and replay.
type Service struct {
	store       Store
	normalizers *normalize.Registry
	applier     CandidateApplier

	fetchers map[id.Source]adapters.PayloadFetcher
	breakers map[id.Source]*circuit.Breaker
	payloads *cache.PayloadCache
	blobs    adapters.BlobStore

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBlobStore enables document uploads. Without it StoreDocument reports
// the storage backend as unavailable.
func WithBlobStore(b adapters.BlobStore) Option {
	return func(s *Service) {
		s.blobs = b
	}
}

// WithPayloadCache enables Redis caching of fetched provider payloads.
func WithPayloadCache(c *cache.PayloadCache) Option {
	return func(s *Service) {
		s.payloads = c
	}
}

// WithFetcher registers an outbound registry client for a provider. Each
// fetcher gets its own circuit breaker.
func WithFetcher(provider id.Source, f adapters.PayloadFetcher) Option {
	return func(s *Service) {
		s.fetchers[provider] = f
		s.breakers[provider] = circuit.New(string(provider),
			circuit.WithFailureThreshold(5),
			circuit.WithSuccessThreshold(2),
		)
	}
}

func New(store Store, normalizers *normalize.Registry, applier CandidateApplier, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("evidence store is required")
	}
	if normalizers == nil {
		return nil, fmt.Errorf("normalizer registry is required")
	}
	if applier == nil {
		return nil, fmt.Errorf("candidate applier is required")
	}

	svc := &Service{
		store:       store,
		normalizers: normalizers,
		applier:     applier,
		fetchers:    make(map[id.Source]adapters.PayloadFetcher),
		breakers:    make(map[id.Source]*circuit.Breaker),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Ingest validates and appends one raw payload, then derives its candidates.
// The payload is normalized before it is stored so a malformed submission is
// refused outright instead of polluting the append-only log.
func (s *Service) Ingest(ctx context.Context, entityID id.EntityID, provider id.Source, payload json.RawMessage, submittedBy string) (*Evidence, []normalize.Candidate, error) {
	ev := &Evidence{
		ID:            id.NewEvidenceID(),
		EntityID:      entityID,
		Provider:      provider,
		SchemaVersion: currentSchemaVersion,
		Payload:       payload,
		SubmittedBy:   submittedBy,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := ev.Validate(); err != nil {
		return nil, nil, err
	}

	var candidates []normalize.Candidate
	if s.normalizers.Supports(provider) {
		var err error
		candidates, err = s.normalizers.Normalize(provider, payload, ev.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := s.store.Insert(ctx, ev); err != nil {
		return nil, nil, fmt.Errorf("persist evidence: %w", err)
	}

	s.metrics.IncrementIngested(string(provider))
	s.logger.InfoContext(ctx, "evidence ingested",
		"evidence_id", ev.ID.String(),
		"entity_id", entityID.String(),
		"provider", provider,
		"candidates", len(candidates),
	)
	return ev, candidates, nil
}

// Get returns one evidence record by ID.
func (s *Service) Get(ctx context.Context, evidenceID id.EvidenceID) (*Evidence, error) {
	ev, err := s.store.Get(ctx, evidenceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "evidence not found")
	}
	return ev, nil
}

// ListByEntity returns an entity's evidence history, oldest first.
func (s *Service) ListByEntity(ctx context.Context, entityID id.EntityID) ([]*Evidence, error) {
	return s.store.ListByEntity(ctx, entityID)
}

// FetchAndIngest pulls a payload from a registry and ingests it. Recently
// fetched payloads come from the Redis cache; provider failures trip a
// per-provider circuit breaker so a broken registry does not absorb every
// refresh cycle.
func (s *Service) FetchAndIngest(ctx context.Context, entityID id.EntityID, provider id.Source, identifier, submittedBy string) (*Evidence, []normalize.Candidate, error) {
	fetcher, ok := s.fetchers[provider]
	if !ok {
		return nil, nil, dErrors.Newf(dErrors.CodeInvalidInput, "no fetcher configured for provider %q", provider)
	}

	payload, hit, err := s.payloads.Find(ctx, provider, identifier)
	if err != nil {
		// Cache trouble is not fetch trouble. Log and go to the provider.
		s.logger.WarnContext(ctx, "payload cache lookup failed", "provider", provider, "error", err)
	}
	if hit {
		s.metrics.IncrementCacheHit()
	} else {
		s.metrics.IncrementCacheMiss()
		payload, err = s.fetch(ctx, provider, fetcher, identifier)
		if err != nil {
			return nil, nil, err
		}
		if err := s.payloads.Save(ctx, provider, identifier, payload); err != nil {
			s.logger.WarnContext(ctx, "payload cache save failed", "provider", provider, "error", err)
		}
	}

	return s.Ingest(ctx, entityID, provider, payload, submittedBy)
}

func (s *Service) fetch(ctx context.Context, provider id.Source, fetcher adapters.PayloadFetcher, identifier string) (json.RawMessage, error) {
	breaker := s.breakers[provider]
	if breaker.IsOpen() {
		// Probe anyway so the breaker can observe recovery; a half-open
		// state machine is overkill for refresh traffic.
		s.logger.WarnContext(ctx, "registry circuit open, probing", "provider", provider)
	}

	payload, err := fetcher.Fetch(ctx, identifier)
	if err != nil {
		category := adapters.CategoryOf(err)
		s.metrics.IncrementFetchFailure(string(provider), string(category))
		if adapters.IsRetryable(err) {
			if _, change := breaker.RecordFailure(); change.Opened {
				s.logger.ErrorContext(ctx, "registry circuit opened", "provider", provider)
			}
		}
		if category == adapters.ErrorTimeout {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "registry fetch timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry fetch failed")
	}

	if _, change := breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "registry circuit closed", "provider", provider)
	}
	return payload, nil
}

// documentUploadPayload is the evidence body recorded for a blob upload.
type documentUploadPayload struct {
	FieldNo     int    `json:"field_no"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int    `json:"size_bytes"`
}

// StoreDocument pushes file bytes to the blob store and records the upload
// as evidence. It targets document-reference fields only; the returned URL
// reaches the field itself through a manual override, never through the
// candidate path.
func (s *Service) StoreDocument(ctx context.Context, entityID id.EntityID, fieldNo fieldreg.FieldNo, data []byte, filename, contentType, submittedBy string) (DocumentRef, error) {
	if s.blobs == nil {
		return DocumentRef{}, dErrors.New(dErrors.CodeUnavailable, "document storage is not configured")
	}
	def, err := fieldreg.Get(fieldNo)
	if err != nil {
		return DocumentRef{}, dErrors.Wrap(err, dErrors.CodeValidation, "document target field")
	}
	if !def.DocumentOnly {
		return DocumentRef{}, dErrors.Newf(dErrors.CodeValidation, "field %d (%s) does not hold a document reference", fieldNo, def.Name)
	}
	if len(data) == 0 {
		return DocumentRef{}, dErrors.New(dErrors.CodeInvalidInput, "document bytes are required")
	}

	url, err := s.blobs.Store(ctx, data, adapters.BlobMetadata{
		Filename:    filename,
		ContentType: contentType,
		UploadedBy:  submittedBy,
	})
	if err != nil {
		return DocumentRef{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "store document")
	}

	payload, err := json.Marshal(documentUploadPayload{
		FieldNo:     int(fieldNo),
		URL:         url,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   len(data),
	})
	if err != nil {
		return DocumentRef{}, fmt.Errorf("encode upload record: %w", err)
	}

	ev := &Evidence{
		ID:            id.NewEvidenceID(),
		EntityID:      entityID,
		Provider:      id.SourceDocExtraction,
		SchemaVersion: currentSchemaVersion,
		Payload:       payload,
		SubmittedBy:   submittedBy,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := ev.Validate(); err != nil {
		return DocumentRef{}, err
	}
	if err := s.store.Insert(ctx, ev); err != nil {
		return DocumentRef{}, fmt.Errorf("persist upload record: %w", err)
	}

	s.metrics.IncrementIngested("document_upload")
	s.logger.InfoContext(ctx, "document stored",
		"evidence_id", ev.ID.String(),
		"entity_id", entityID.String(),
		"field_no", int(fieldNo),
		"url", url,
	)
	return DocumentRef{URL: url, EvidenceID: ev.ID, FieldNo: int(fieldNo)}, nil
}

// Replay re-derives candidates from the entity's full evidence history in
// capture order and re-runs conflict resolution for each. Because
// normalizers are deterministic and resolution is monotone in source
// precedence, a replay over unchanged evidence converges to the state the
// record already holds.
func (s *Service) Replay(ctx context.Context, entityID id.EntityID) (ReplayResult, error) {
	history, err := s.store.ListByEntity(ctx, entityID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("load evidence history: %w", err)
	}

	var result ReplayResult
	for _, ev := range history {
		result.EvidenceSeen++
		if !s.normalizers.Supports(ev.Provider) {
			result.Skipped++
			continue
		}
		candidates, err := s.normalizers.Normalize(ev.Provider, ev.Payload, ev.ID)
		if err != nil {
			// Evidence that normalized at capture time should still
			// normalize. Surface it rather than silently skipping.
			return result, dErrors.Wrap(err, dErrors.CodeInvariantViolation,
				"stored evidence "+ev.ID.String()+" no longer normalizes")
		}
		result.Candidates += len(candidates)

		applied, err := s.applier.ApplyCandidates(ctx, entityID, candidates)
		if err != nil {
			return result, fmt.Errorf("replay apply for evidence %s: %w", ev.ID.String(), err)
		}
		result.Applied += applied
	}

	s.metrics.IncrementReplayRuns()
	s.logger.InfoContext(ctx, "evidence replay finished",
		"entity_id", entityID.String(),
		"evidence_seen", result.EvidenceSeen,
		"applied", result.Applied,
	)
	return result, nil
}
