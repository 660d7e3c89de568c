package programrule

import (
	"github.com/TimurManjosov/trackerrules/internal/metadata"
	"github.com/TimurManjosov/trackerrules/internal/tracker"
)

// AppliesNow reports whether rules of a stage with the given validation
// strategy are due for an entity in the given status. ON_COMPLETE stages are
// only enforced once the entity is completed; every other strategy,
// including an unset one, applies immediately.
func AppliesNow(strategy metadata.ValidationStrategy, status tracker.Status) bool {
	if strategy == metadata.ValidationOnComplete {
		return status.IsCompleted()
	}
	return true
}
