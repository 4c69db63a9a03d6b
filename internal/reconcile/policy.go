package reconcile

import (
	"fmt"

	"masterfile/internal/fieldreg"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
)

// decide is the precedence policy: pure, deterministic, and the single choke
// point every write path runs through. incumbent is nil when the field holds
// no value.
func decide(def fieldreg.Definition, incumbentValue *record.Value, incumbentMeta *record.Provenance, source id.Source, value record.Value) (Action, string) {
	if def.DocumentOnly && source != id.SourceManualOverride {
		return ActionReject, fmt.Sprintf(
			"field %d (%s) is document-only and changes only by explicit replacement", def.FieldNo, def.Name)
	}

	if incumbentMeta == nil {
		return ActionApply, "field was empty"
	}

	if source == incumbentMeta.Source {
		if incumbentValue != nil && incumbentValue.Equal(value) {
			return ActionNoChange, fmt.Sprintf("identical value already held from %s", source)
		}
		// A source refreshing its own earlier value is not an overwrite
		// contest.
		return ActionApply, fmt.Sprintf("same-source refresh from %s", source)
	}

	if source.Outranks(incumbentMeta.Source) {
		return ActionApply, fmt.Sprintf("%s outranks %s", source, incumbentMeta.Source)
	}
	return ActionReject, fmt.Sprintf("%s cannot overwrite %s", source, incumbentMeta.Source)
}
