package moderation

import (
	"testing"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
)

func TestFuse(t *testing.T) {
	tests := []struct {
		name     string
		labels   []moderation.ViolationLabel
		want     moderation.Decision
		priority Priority
	}{
		{name: "empty accepts", labels: nil, want: moderation.DecisionAccept, priority: PriorityNone},
		{name: "alcohol alone flags", labels: []moderation.ViolationLabel{moderation.LabelAlcohol}, want: moderation.DecisionFlag, priority: PriorityLow},
		{name: "nudity alone rejects", labels: []moderation.ViolationLabel{moderation.LabelNudity}, want: moderation.DecisionReject, priority: PriorityHigh},
		{
			name:     "medium beats low",
			labels:   []moderation.ViolationLabel{moderation.LabelDrugs, moderation.LabelQRCodes},
			want:     moderation.DecisionFlag,
			priority: PriorityMedium,
		},
		{
			name:     "high beats medium",
			labels:   []moderation.ViolationLabel{moderation.LabelHateSymbols, moderation.LabelWeapons, moderation.LabelSmoking},
			want:     moderation.DecisionReject,
			priority: PriorityHigh,
		},
		{
			name:     "untiered labels still flag",
			labels:   []moderation.ViolationLabel{moderation.LabelDrugsParaphernalia, moderation.LabelQRCodesText},
			want:     moderation.DecisionFlag,
			priority: PriorityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fusion := Fuse(moderation.NewViolationSet(tt.labels...))
			assert.Equal(t, tt.want, fusion.Decision)
			assert.Equal(t, tt.priority, fusion.Priority)
		})
	}
}

func TestFuse_Rationale(t *testing.T) {
	fusion := Fuse(moderation.NewViolationSet(moderation.LabelWeapons, moderation.LabelBloodGore, moderation.LabelAlcohol))

	assert.Equal(t, []moderation.ViolationLabel{moderation.LabelBloodGore, moderation.LabelWeapons}, fusion.Triggers)
	assert.Equal(t, "Reject: high-priority violations (blood/gore, weapons)", fusion.Rationale())
	assert.Equal(t, "Accept: no violations detected", Fuse(moderation.NewViolationSet()).Rationale())
}

func TestPriorityOf(t *testing.T) {
	assert.Equal(t, PriorityHigh, PriorityOf(moderation.LabelSelfHarm))
	assert.Equal(t, PriorityMedium, PriorityOf(moderation.LabelThreateningText))
	assert.Equal(t, PriorityLow, PriorityOf(moderation.LabelPersonalInformation))
	assert.Equal(t, PriorityNone, PriorityOf(moderation.LabelHateSymbolsText))
	assert.Equal(t, "medium", PriorityMedium.String())
}
