package evidence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterfile/internal/evidence/adapters"
	"masterfile/internal/normalize"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	"masterfile/pkg/requestcontext"
)

const leiPayload = `{
	"lei": "529900T8BM49AURSDO55",
	"entity": {
		"legalName": {"name": "Global Widgets AG"},
		"jurisdiction": "DE",
		"status": "ACTIVE"
	}
}`

type stubApplier struct {
	calls [][]normalize.Candidate
	err   error
}

func (a *stubApplier) ApplyCandidates(_ context.Context, _ id.EntityID, candidates []normalize.Candidate) (int, error) {
	if a.err != nil {
		return 0, a.err
	}
	a.calls = append(a.calls, candidates)
	return len(candidates), nil
}

type stubFetcher struct {
	payload json.RawMessage
	err     error
	calls   int
}

func (f *stubFetcher) Fetch(context.Context, string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func newTestService(t *testing.T, opts ...Option) (*Service, *stubApplier) {
	t.Helper()
	applier := &stubApplier{}
	svc, err := New(NewMemoryStore(), normalize.NewRegistry(), applier, opts...)
	require.NoError(t, err)
	return svc, applier
}

func TestService_Ingest(t *testing.T) {
	svc, _ := newTestService(t)
	entityID := id.NewEntityID()
	now := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	ev, candidates, err := svc.Ingest(ctx, entityID, id.SourcePrimaryRegistry, json.RawMessage(leiPayload), "refresh-job")
	require.NoError(t, err)
	assert.Equal(t, now, ev.CreatedAt)
	assert.Equal(t, currentSchemaVersion, ev.SchemaVersion)
	assert.NotEmpty(t, candidates)
	for _, c := range candidates {
		assert.Equal(t, ev.ID, c.EvidenceID, "every candidate points back at the stored payload")
	}

	stored, err := svc.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.JSONEq(t, leiPayload, string(stored.Payload))
}

func TestNew_SecondServiceInSameProcess(t *testing.T) {
	// Construction registers nothing process-global; a fresh instance per
	// test (and one in the server next to its metrics) must coexist.
	first, _ := newTestService(t)
	second, _ := newTestService(t)

	_, _, err := first.Ingest(context.Background(), id.NewEntityID(),
		id.SourcePrimaryRegistry, json.RawMessage(leiPayload), "refresh-job")
	require.NoError(t, err)
	_, _, err = second.Ingest(context.Background(), id.NewEntityID(),
		id.SourcePrimaryRegistry, json.RawMessage(leiPayload), "refresh-job")
	require.NoError(t, err)
}

func TestService_Ingest_MalformedPayloadStoresNothing(t *testing.T) {
	svc, _ := newTestService(t)
	entityID := id.NewEntityID()

	_, _, err := svc.Ingest(context.Background(), entityID, id.SourcePrimaryRegistry, json.RawMessage(`{}`), "refresh-job")
	require.Error(t, err)

	history, err := svc.ListByEntity(context.Background(), entityID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestService_Ingest_ProviderWithoutNormalizer(t *testing.T) {
	// Manual uploads have no normalizer; the payload is still archived.
	svc, _ := newTestService(t)

	ev, candidates, err := svc.Ingest(context.Background(), id.NewEntityID(), id.SourceUserInput,
		json.RawMessage(`{"note":"certified copy"}`), "analyst-7")
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, id.SourceUserInput, ev.Provider)
}

func TestService_FetchAndIngest(t *testing.T) {
	fetcher := &stubFetcher{payload: json.RawMessage(leiPayload)}
	svc, _ := newTestService(t, WithFetcher(id.SourcePrimaryRegistry, fetcher))

	ev, candidates, err := svc.FetchAndIngest(context.Background(), id.NewEntityID(),
		id.SourcePrimaryRegistry, "529900T8BM49AURSDO55", "refresh-job")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.NotEmpty(t, candidates)
	assert.Equal(t, id.SourcePrimaryRegistry, ev.Provider)
}

func TestService_FetchAndIngest_NoFetcherConfigured(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.FetchAndIngest(context.Background(), id.NewEntityID(),
		id.SourceSecondaryRegistry, "09876543", "refresh-job")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestService_FetchAndIngest_RetryableFailuresOpenBreaker(t *testing.T) {
	fetcher := &stubFetcher{
		payload: json.RawMessage(leiPayload),
		err:     adapters.NewProviderError(adapters.ErrorProviderOutage, "gleif", "boom", nil),
	}
	svc, _ := newTestService(t, WithFetcher(id.SourcePrimaryRegistry, fetcher))

	for i := 0; i < 5; i++ {
		_, _, err := svc.FetchAndIngest(context.Background(), id.NewEntityID(),
			id.SourcePrimaryRegistry, "529900T8BM49AURSDO55", "refresh-job")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	}
	assert.True(t, svc.breakers[id.SourcePrimaryRegistry].IsOpen())

	// Recovery closes it again after the success threshold.
	fetcher.err = nil
	for i := 0; i < 2; i++ {
		_, _, err := svc.FetchAndIngest(context.Background(), id.NewEntityID(),
			id.SourcePrimaryRegistry, "529900T8BM49AURSDO55", "refresh-job")
		require.NoError(t, err)
	}
	assert.False(t, svc.breakers[id.SourcePrimaryRegistry].IsOpen())
}

func TestService_FetchAndIngest_NotFoundDoesNotTrip(t *testing.T) {
	fetcher := &stubFetcher{err: adapters.NewProviderError(adapters.ErrorNotFound, "gleif", "no such LEI", nil)}
	svc, _ := newTestService(t, WithFetcher(id.SourcePrimaryRegistry, fetcher))

	for i := 0; i < 10; i++ {
		_, _, err := svc.FetchAndIngest(context.Background(), id.NewEntityID(),
			id.SourcePrimaryRegistry, "NOPE", "refresh-job")
		require.Error(t, err)
	}
	assert.False(t, svc.breakers[id.SourcePrimaryRegistry].IsOpen())
}

type stubBlobStore struct {
	url  string
	err  error
	last adapters.BlobMetadata
}

func (b *stubBlobStore) Store(_ context.Context, _ []byte, meta adapters.BlobMetadata) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.last = meta
	return b.url, nil
}

func TestService_StoreDocument(t *testing.T) {
	blobs := &stubBlobStore{url: "https://blobs.internal/7f3a/certificate.pdf"}
	svc, _ := newTestService(t, WithBlobStore(blobs))
	entityID := id.NewEntityID()

	ref, err := svc.StoreDocument(context.Background(), entityID, 71,
		[]byte("%PDF-1.7"), "certificate.pdf", "application/pdf", "analyst-7")
	require.NoError(t, err)
	assert.Equal(t, blobs.url, ref.URL)
	assert.Equal(t, 71, ref.FieldNo)
	assert.Equal(t, "analyst-7", blobs.last.UploadedBy)

	// The upload lands in the evidence history as a document record.
	history, err := svc.ListByEntity(context.Background(), entityID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ref.EvidenceID, history[0].ID)
	assert.Equal(t, id.SourceDocExtraction, history[0].Provider)
	assert.Contains(t, string(history[0].Payload), blobs.url)
}

func TestService_StoreDocument_RejectsNonDocumentField(t *testing.T) {
	svc, _ := newTestService(t, WithBlobStore(&stubBlobStore{url: "https://blobs.internal/x"}))

	_, err := svc.StoreDocument(context.Background(), id.NewEntityID(), 1,
		[]byte("x"), "name.txt", "text/plain", "analyst-7")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestService_StoreDocument_UnconfiguredBackend(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.StoreDocument(context.Background(), id.NewEntityID(), 71,
		[]byte("x"), "certificate.pdf", "application/pdf", "analyst-7")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestService_StoreDocument_UploadRecordSurvivesReplay(t *testing.T) {
	// The upload record carries no extractable fields, so replay walks past
	// it without applying anything.
	blobs := &stubBlobStore{url: "https://blobs.internal/7f3a/extract.pdf"}
	svc, applier := newTestService(t, WithBlobStore(blobs))
	entityID := id.NewEntityID()

	_, err := svc.StoreDocument(context.Background(), entityID, 73,
		[]byte("%PDF-1.7"), "extract.pdf", "application/pdf", "analyst-7")
	require.NoError(t, err)

	result, err := svc.Replay(context.Background(), entityID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EvidenceSeen)
	assert.Zero(t, result.Applied)
	require.Len(t, applier.calls, 1)
	assert.Empty(t, applier.calls[0])
}

func TestService_FetchAndIngest_TimeoutIsTyped(t *testing.T) {
	fetcher := &stubFetcher{err: adapters.NewProviderError(adapters.ErrorTimeout, "gleif", "deadline", nil)}
	svc, _ := newTestService(t, WithFetcher(id.SourcePrimaryRegistry, fetcher))

	_, _, err := svc.FetchAndIngest(context.Background(), id.NewEntityID(),
		id.SourcePrimaryRegistry, "529900T8BM49AURSDO55", "refresh-job")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestService_Replay(t *testing.T) {
	svc, applier := newTestService(t)
	entityID := id.NewEntityID()
	ctx := context.Background()

	_, first, err := svc.Ingest(ctx, entityID, id.SourcePrimaryRegistry, json.RawMessage(leiPayload), "refresh-job")
	require.NoError(t, err)
	_, _, err = svc.Ingest(ctx, entityID, id.SourceUserInput, json.RawMessage(`{"note":"manual"}`), "analyst-7")
	require.NoError(t, err)

	result, err := svc.Replay(ctx, entityID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.EvidenceSeen)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, len(first), result.Candidates)
	assert.Equal(t, len(first), result.Applied)
	require.Len(t, applier.calls, 1)
	assert.Equal(t, first, applier.calls[0])
}

func TestService_Replay_IsRepeatable(t *testing.T) {
	svc, _ := newTestService(t)
	entityID := id.NewEntityID()
	ctx := context.Background()

	_, _, err := svc.Ingest(ctx, entityID, id.SourcePrimaryRegistry, json.RawMessage(leiPayload), "refresh-job")
	require.NoError(t, err)

	first, err := svc.Replay(ctx, entityID)
	require.NoError(t, err)
	second, err := svc.Replay(ctx, entityID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
