package moderation

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
)

type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "none"
	}
}

var (
	highPriority = moderation.NewViolationSet(
		moderation.LabelNudity,
		moderation.LabelBloodGore,
		moderation.LabelWeapons,
		moderation.LabelDeathCorpses,
		moderation.LabelSelfHarm,
		moderation.LabelAbuseTorture,
	)
	mediumPriority = moderation.NewViolationSet(
		moderation.LabelDrugs,
		moderation.LabelHateSymbols,
		moderation.LabelThreateningText,
	)
	lowPriority = moderation.NewViolationSet(
		moderation.LabelAlcohol,
		moderation.LabelSmoking,
		moderation.LabelQRCodes,
		moderation.LabelPersonalInformation,
	)
)

// PriorityOf returns the tier a single label belongs to. Labels outside every
// tier report PriorityNone.
func PriorityOf(label moderation.ViolationLabel) Priority {
	switch {
	case highPriority.Has(label):
		return PriorityHigh
	case mediumPriority.Has(label):
		return PriorityMedium
	case lowPriority.Has(label):
		return PriorityLow
	default:
		return PriorityNone
	}
}

// Fusion is the outcome of fusing a violation set.
type Fusion struct {
	Decision moderation.Decision
	Priority Priority
	// Triggers are the labels of the deciding tier, sorted.
	Triggers []moderation.ViolationLabel
}

// Fuse turns the accumulated violations into one decision. Accept is reserved
// for the empty set; any high-priority label rejects; everything else flags.
func Fuse(violations moderation.ViolationSet) Fusion {
	if len(violations) == 0 {
		return Fusion{Decision: moderation.DecisionAccept, Priority: PriorityNone}
	}
	if violations.Intersects(highPriority) {
		return Fusion{
			Decision: moderation.DecisionReject,
			Priority: PriorityHigh,
			Triggers: members(violations, highPriority),
		}
	}
	if violations.Intersects(mediumPriority) {
		return Fusion{
			Decision: moderation.DecisionFlag,
			Priority: PriorityMedium,
			Triggers: members(violations, mediumPriority),
		}
	}
	return Fusion{
		Decision: moderation.DecisionFlag,
		Priority: PriorityLow,
		Triggers: violations.Sorted(),
	}
}

func (f Fusion) Rationale() string {
	if f.Decision == moderation.DecisionAccept {
		return "Accept: no violations detected"
	}
	labels := make([]string, len(f.Triggers))
	for i, l := range f.Triggers {
		labels[i] = string(l)
	}
	return fmt.Sprintf("%s: %s-priority violations (%s)", f.Decision, f.Priority, strings.Join(labels, ", "))
}

func members(violations, tier moderation.ViolationSet) []moderation.ViolationLabel {
	var out []moderation.ViolationLabel
	for _, l := range violations.Sorted() {
		if tier.Has(l) {
			out = append(out, l)
		}
	}
	return out
}
