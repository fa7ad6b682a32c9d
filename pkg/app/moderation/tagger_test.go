package moderation

import (
	"testing"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
)

func TestKeywordTagger_Tag(t *testing.T) {
	tagger := NewKeywordTagger()

	tests := []struct {
		name string
		text string
		want []moderation.ViolationLabel
	}{
		{
			name: "additive and case insensitive",
			text: "BLOOD and a GUN were visible",
			want: []moderation.ViolationLabel{moderation.LabelBloodGore, moderation.LabelWeapons},
		},
		{
			name: "lower case",
			text: "a knife next to a wine glass",
			want: []moderation.ViolationLabel{moderation.LabelWeapons, moderation.LabelAlcohol},
		},
		{
			name: "negation is not handled",
			text: "no weapon in frame",
			want: []moderation.ViolationLabel{moderation.LabelWeapons},
		},
		{
			name: "personal information and qr codes",
			text: "YES. The card shows a PERSONAL phone number and a BARCODE",
			want: []moderation.ViolationLabel{moderation.LabelPersonalInformation, moderation.LabelQRCodesText},
		},
		{
			name: "smoking and threats",
			text: "cigarette smoke, threatening graffiti",
			want: []moderation.ViolationLabel{moderation.LabelSmoking, moderation.LabelThreateningText},
		},
		{
			name: "self harm and torture",
			text: "self-harm scars and signs of torture",
			want: []moderation.ViolationLabel{moderation.LabelSelfHarm, moderation.LabelAbuseTorture},
		},
		{
			name: "death and drugs",
			text: "a dead body near a syringe",
			want: []moderation.ViolationLabel{moderation.LabelDeathCorpses, moderation.LabelDrugsParaphernalia},
		},
		{
			name: "hate",
			text: "an extremist flag",
			want: []moderation.ViolationLabel{moderation.LabelHateSymbolsText},
		},
		{name: "nothing", text: "a sunny beach", want: nil},
		{name: "empty", text: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tagger.Tag(tt.text))
		})
	}
}

func TestKeywordTagger_Affirmative(t *testing.T) {
	tagger := NewKeywordTagger()

	assert.True(t, tagger.Affirmative("YES"))
	assert.True(t, tagger.Affirmative("**Is the image violating?** yes"))
	assert.True(t, tagger.Affirmative("eyes closed"))
	assert.False(t, tagger.Affirmative("NO"))
	assert.False(t, tagger.Affirmative(""))
}
