package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"masterfile/internal/audit"
	"masterfile/internal/fieldreg"
	"masterfile/internal/normalize"
	"masterfile/internal/record"
	"masterfile/internal/reconcile/metrics"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
	"masterfile/pkg/platform/sentinel"
	"masterfile/pkg/requestcontext"
)

// maxApplyRetries bounds optimistic-concurrency retries. Each retry re-runs
// the full evaluate against fresh state, so a retry can legitimately flip an
// APPLY into a REJECT when a stronger source won the race.
const maxApplyRetries = 3

// batchConcurrency caps parallel field groups during ApplyBatch.
const batchConcurrency = 4

// Service is the conflict-resolution writer. It is the sole mutator of the
// canonical record.
type Service struct {
	records record.Store
	trail   audit.Store
	tx      TxRunner

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
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

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(records record.Store, trail audit.Store, tx TxRunner, opts ...Option) (*Service, error) {
	if records == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}

	svc := &Service{
		records: records,
		trail:   trail,
		tx:      tx,
		logger:  slog.Default(),
		tracer:  otel.Tracer("masterfile/reconcile"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// refuseOverrideSource keeps candidates claiming MANUAL_OVERRIDE out of the
// candidate paths. Overrides carry a mandatory reason and travel through
// ApplyManualOverride only; evaluation refuses them identically so a
// proposal never promises a write the apply path would reject.
func refuseOverrideSource(source id.Source) error {
	if source == id.SourceManualOverride {
		return dErrors.New(dErrors.CodeValidation,
			"manual overrides must use the override operation")
	}
	return nil
}

// Evaluate decides what would happen if the candidate were applied. Pure
// read, no side effects, safe at any concurrency.
func (s *Service) Evaluate(ctx context.Context, entityID id.EntityID, candidate normalize.Candidate) (Evaluation, error) {
	if err := refuseOverrideSource(candidate.Source); err != nil {
		return Evaluation{}, err
	}
	def, err := s.profileField(candidate.FieldNo)
	if err != nil {
		return Evaluation{}, err
	}
	profile, err := s.records.GetProfile(ctx, entityID)
	if err != nil {
		return Evaluation{}, fmt.Errorf("load profile: %w", err)
	}
	eval := s.evaluateAgainst(profile, def, candidate.Source, candidate.Value)
	s.metrics.IncrementEvaluation(string(eval.Action))
	return eval, nil
}

// EvaluateAll evaluates a batch of candidates against one profile snapshot.
func (s *Service) EvaluateAll(ctx context.Context, entityID id.EntityID, candidates []normalize.Candidate) ([]Evaluation, error) {
	profile, err := s.records.GetProfile(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	out := make([]Evaluation, len(candidates))
	for i, c := range candidates {
		if err := refuseOverrideSource(c.Source); err != nil {
			return nil, err
		}
		def, err := s.profileField(c.FieldNo)
		if err != nil {
			return nil, err
		}
		out[i] = s.evaluateAgainst(profile, def, c.Source, c.Value)
		s.metrics.IncrementEvaluation(string(out[i].Action))
	}
	return out, nil
}

// Apply evaluates the candidate and, on APPLY, writes value, provenance, and
// audit entry atomically. A version conflict means a concurrent writer won;
// the whole evaluate is re-run against fresh state.
func (s *Service) Apply(ctx context.Context, entityID id.EntityID, candidate normalize.Candidate, actor string) (Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.Apply", trace.WithAttributes(
		attribute.String("entity_id", entityID.String()),
		attribute.Int("field_no", int(candidate.FieldNo)),
		attribute.String("source", candidate.Source.String()),
	))
	defer span.End()

	if err := refuseOverrideSource(candidate.Source); err != nil {
		return Evaluation{}, err
	}
	def, err := s.profileField(candidate.FieldNo)
	if err != nil {
		return Evaluation{}, err
	}

	meta := record.Provenance{
		Source:     candidate.Source,
		Confidence: candidate.Confidence,
		VerifiedBy: actor,
		Timestamp:  requestcontext.Now(ctx),
		FieldNo:    candidate.FieldNo,
	}
	return s.applyWithRetry(ctx, entityID, def, candidate.Value, meta, audit.ActionApplied, "", actor)
}

// ApplyManualOverride forces a human-entered value onto a field. The reason
// is mandatory and lands on the audit entry. Manual overrides are the one
// path allowed to change document-only fields.
func (s *Service) ApplyManualOverride(ctx context.Context, entityID id.EntityID, fieldNo fieldreg.FieldNo, value record.Value, actor, reason string) (Evaluation, error) {
	if reason == "" {
		return Evaluation{}, dErrors.New(dErrors.CodeValidation, "manual override requires a reason")
	}
	if actor == "" {
		return Evaluation{}, dErrors.New(dErrors.CodeValidation, "manual override requires an actor")
	}
	def, err := s.profileField(fieldNo)
	if err != nil {
		return Evaluation{}, err
	}
	if value.Kind != def.DataType {
		return Evaluation{}, dErrors.Newf(dErrors.CodeValidation,
			"field %d (%s) expects %s, got %s", fieldNo, def.Name, def.DataType, value.Kind)
	}

	ctx, span := s.tracer.Start(ctx, "reconcile.ManualOverride", trace.WithAttributes(
		attribute.String("entity_id", entityID.String()),
		attribute.Int("field_no", int(fieldNo)),
	))
	defer span.End()

	meta := record.Provenance{
		Source:     id.SourceManualOverride,
		Confidence: id.MustConfidence(1),
		VerifiedBy: actor,
		Timestamp:  requestcontext.Now(ctx),
		FieldNo:    fieldNo,
	}
	eval, err := s.applyWithRetry(ctx, entityID, def, value, meta, audit.ActionManualOverride, reason, actor)
	if err == nil && eval.Applied() {
		s.metrics.IncrementOverrides()
	}
	return eval, err
}

func (s *Service) applyWithRetry(ctx context.Context, entityID id.EntityID, def fieldreg.Definition, value record.Value, meta record.Provenance, action audit.Action, reason, actor string) (Evaluation, error) {
	var eval Evaluation
	for attempt := 0; attempt <= maxApplyRetries; attempt++ {
		if attempt > 0 {
			s.metrics.IncrementConflictRetries()
		}

		err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
			profile, err := s.records.GetProfile(ctx, entityID)
			if err != nil {
				return fmt.Errorf("load profile: %w", err)
			}
			eval = s.evaluateAgainst(profile, def, meta.Source, value)
			s.metrics.IncrementEvaluation(string(eval.Action))
			if !eval.Applied() {
				return nil
			}

			if err := s.records.UpdateProfileColumn(ctx, entityID, def.TargetColumn, value, meta, profile.Version); err != nil {
				return err
			}

			auditReason := reason
			if auditReason == "" {
				auditReason = eval.Reason
			}
			event := audit.Event{
				EntityID:  entityID,
				FieldNo:   def.FieldNo,
				Action:    action,
				OldValue:  eval.CurrentValue,
				NewValue:  &value,
				OldSource: eval.CurrentSource,
				NewSource: meta.Source,
				Actor:     actor,
				Reason:    auditReason,
				RequestID: requestcontext.RequestID(ctx),
				Timestamp: meta.Timestamp,
			}
			if err := s.trail.Append(ctx, event); err != nil {
				return fmt.Errorf("append audit event: %w", err)
			}
			return nil
		})
		if errors.Is(err, sentinel.ErrConflict) {
			continue
		}
		if err != nil {
			return Evaluation{}, err
		}

		if eval.Applied() {
			s.metrics.IncrementApplies()
			s.logger.InfoContext(ctx, "field applied",
				"entity_id", entityID.String(),
				"field_no", int(def.FieldNo),
				"source", meta.Source.String(),
				"old_source", eval.CurrentSource.String(),
			)
		}
		return eval, nil
	}
	return Evaluation{}, dErrors.New(dErrors.CodeConflict, "apply retries exhausted under concurrent writes")
}

// ApplyBatch applies candidates concurrently across distinct field numbers
// and strictly in input order within one field number. Results come back in
// input order.
func (s *Service) ApplyBatch(ctx context.Context, entityID id.EntityID, candidates []normalize.Candidate, actor string) ([]Evaluation, error) {
	groups := make(map[fieldreg.FieldNo][]int)
	for i, c := range candidates {
		groups[c.FieldNo] = append(groups[c.FieldNo], i)
	}
	fieldNos := make([]fieldreg.FieldNo, 0, len(groups))
	for fieldNo := range groups {
		fieldNos = append(fieldNos, fieldNo)
	}
	sort.Slice(fieldNos, func(i, j int) bool { return fieldNos[i] < fieldNos[j] })

	results := make([]Evaluation, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, fieldNo := range fieldNos {
		indices := groups[fieldNo]
		g.Go(func() error {
			for _, i := range indices {
				eval, err := s.Apply(ctx, entityID, candidates[i], actor)
				if err != nil {
					return err
				}
				results[i] = eval
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ApplyCandidates implements the evidence ingestion port: apply a candidate
// batch and report how many writes landed.
func (s *Service) ApplyCandidates(ctx context.Context, entityID id.EntityID, candidates []normalize.Candidate) (int, error) {
	actor := requestcontext.Actor(ctx)
	if actor == "" {
		actor = "system"
	}
	evals, err := s.ApplyBatch(ctx, entityID, candidates, actor)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, eval := range evals {
		if eval.Applied() {
			applied++
		}
	}
	return applied, nil
}

// CreateRow persists one repeating child row. Every column must carry a meta
// entry whose field number resolves through the registry to exactly that
// record and column; any mismatch fails the whole operation before anything
// is visible.
func (s *Service) CreateRow(ctx context.Context, entityID id.EntityID, target fieldreg.TargetRecord, values map[fieldreg.Column]record.Value, meta map[fieldreg.Column]record.Provenance, actor string) (id.RowID, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.CreateRow", trace.WithAttributes(
		attribute.String("entity_id", entityID.String()),
		attribute.String("target", string(target)),
	))
	defer span.End()

	if len(values) == 0 {
		return id.RowID{}, dErrors.New(dErrors.CodeValidation, "row has no columns")
	}
	if err := validateRowMeta(target, values, meta); err != nil {
		return id.RowID{}, err
	}

	// Row creation runs through the same precedence choke point as profile
	// writes. Columns are empty on a new row, so only document-only
	// protection can reject.
	for col, value := range values {
		def, err := fieldreg.Get(meta[col].FieldNo)
		if err != nil {
			return id.RowID{}, err
		}
		if action, reason := decide(def, nil, nil, meta[col].Source, value); action != ActionApply {
			return id.RowID{}, dErrors.Newf(dErrors.CodeValidation, "column %s: %s", col, reason)
		}
	}

	row := &record.Row{
		RowID:     id.NewRowID(),
		EntityID:  entityID,
		Target:    target,
		Columns:   values,
		Meta:      meta,
		CreatedAt: requestcontext.Now(ctx),
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.records.InsertRow(ctx, row); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
		for col, value := range values {
			value := value
			event := audit.Event{
				EntityID:  entityID,
				FieldNo:   meta[col].FieldNo,
				Action:    audit.ActionRowCreated,
				NewValue:  &value,
				NewSource: meta[col].Source,
				Actor:     actor,
				Reason:    "row " + row.RowID.String() + " created",
				RequestID: requestcontext.RequestID(ctx),
				Timestamp: row.CreatedAt,
			}
			if err := s.trail.Append(ctx, event); err != nil {
				return fmt.Errorf("append audit event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return id.RowID{}, err
	}

	s.metrics.IncrementRowsCreated()
	s.logger.InfoContext(ctx, "row created",
		"entity_id", entityID.String(),
		"row_id", row.RowID.String(),
		"target", string(target),
		"columns", len(values),
	)
	return row.RowID, nil
}

// profileField resolves a field number and confirms it lives on the
// singleton profile.
func (s *Service) profileField(fieldNo fieldreg.FieldNo) (fieldreg.Definition, error) {
	def, err := fieldreg.Get(fieldNo)
	if err != nil {
		return fieldreg.Definition{}, err
	}
	if def.Repeating {
		return fieldreg.Definition{}, dErrors.Newf(dErrors.CodeValidation,
			"field %d (%s) targets a repeating record; use row creation", fieldNo, def.Name)
	}
	return def, nil
}

func (s *Service) evaluateAgainst(profile *record.Profile, def fieldreg.Definition, source id.Source, value record.Value) Evaluation {
	var incumbentValue *record.Value
	var incumbentMeta *record.Provenance
	if v, ok := profile.Columns[def.TargetColumn]; ok {
		v := v
		incumbentValue = &v
	}
	if m, ok := profile.Meta[def.TargetColumn]; ok {
		m := m
		incumbentMeta = &m
	}

	action, reason := decide(def, incumbentValue, incumbentMeta, source, value)
	eval := Evaluation{
		FieldNo:      def.FieldNo,
		Action:       action,
		Reason:       reason,
		CurrentValue: incumbentValue,
	}
	if incumbentMeta != nil {
		eval.CurrentSource = incumbentMeta.Source
	}
	return eval
}

// validateRowMeta enforces the value/meta pairing for a new row: same key
// sets, and each meta fieldNo mapping back to this record and column with a
// matching data type.
func validateRowMeta(target fieldreg.TargetRecord, values map[fieldreg.Column]record.Value, meta map[fieldreg.Column]record.Provenance) error {
	for col := range values {
		if _, ok := meta[col]; !ok {
			return dErrors.Newf(dErrors.CodeInvalidMeta, "column %s has a value but no meta entry", col)
		}
	}
	for col, m := range meta {
		value, ok := values[col]
		if !ok {
			return dErrors.Newf(dErrors.CodeInvalidMeta, "column %s has meta but no value", col)
		}
		def, err := fieldreg.Get(m.FieldNo)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidMeta,
				fmt.Sprintf("column %s meta references an unknown field", col))
		}
		if def.TargetRecord != target || def.TargetColumn != col {
			return dErrors.Newf(dErrors.CodeInvalidMeta,
				"column %s meta field %d maps to %s.%s", col, m.FieldNo, def.TargetRecord, def.TargetColumn)
		}
		if value.Kind != def.DataType {
			return dErrors.Newf(dErrors.CodeInvalidMeta,
				"column %s expects %s, got %s", col, def.DataType, value.Kind)
		}
		if !m.Source.IsValid() {
			return dErrors.Newf(dErrors.CodeInvalidMeta, "column %s meta carries unknown source %q", col, m.Source)
		}
	}
	return nil
}
