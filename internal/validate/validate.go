// Package validate reports module-level completeness of the canonical
// record: whether every field a business milestone needs is populated,
// regardless of which source populated it.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"masterfile/internal/fieldreg"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
	dErrors "masterfile/pkg/domain-errors"
)

// Module is the public name of one jointly required field set.
type Module string

const (
	ModuleCoreIdentity Module = "core_identity"
	ModuleRegistration Module = "registration"
	ModuleOwnership    Module = "ownership"
	ModuleDocuments    Module = "documents"
)

// modules maps each module to the field numbers it requires. Field numbers,
// not column names, are the stable vocabulary here.
var modules = map[Module][]fieldreg.FieldNo{
	ModuleCoreIdentity: {1, 3, 5, 7, 9, 10},
	ModuleRegistration: {7, 14, 16, 18, 19},
	ModuleOwnership:    {83, 84, 85},
	ModuleDocuments:    {71, 72, 73},
}

// Modules returns the known module names, sorted.
func Modules() []Module {
	out := make([]Module, 0, len(modules))
	for m := range modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Result is one module validation outcome. Errors name every missing field
// in human-readable form.
type Result struct {
	Module Module   `json:"module"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ProfileReader is the slice of the record store the validator needs.
type ProfileReader interface {
	GetProfile(ctx context.Context, entityID id.EntityID) (*record.Profile, error)
}

// Service validates module completeness. Read-only; it never writes and has
// no opinion on provenance.
type Service struct {
	records ProfileReader
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(records ProfileReader, opts ...Option) (*Service, error) {
	if records == nil {
		return nil, fmt.Errorf("record store is required")
	}
	svc := &Service{records: records, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Validate checks one module against the entity's populated columns.
func (s *Service) Validate(ctx context.Context, entityID id.EntityID, module Module) (Result, error) {
	required, ok := modules[module]
	if !ok {
		return Result{}, dErrors.Newf(dErrors.CodeNotFound, "unknown module %q", module)
	}

	profile, err := s.records.GetProfile(ctx, entityID)
	if err != nil {
		return Result{}, fmt.Errorf("load profile: %w", err)
	}

	result := Result{Module: module, Valid: true}
	for _, fieldNo := range required {
		def, err := fieldreg.Get(fieldNo)
		if err != nil {
			// A module referencing an unknown field is a programming
			// error in this table, not a data problem.
			return Result{}, err
		}
		if _, populated := profile.Columns[def.TargetColumn]; !populated {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("field %d (%s) is not populated", fieldNo, def.Name))
		}
	}
	return result, nil
}
