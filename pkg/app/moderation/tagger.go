package moderation

import (
	"strings"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
)

const affirmativeToken = "YES"

// Tagger turns a detector's free-text verdict into violation labels.
type Tagger interface {
	// Affirmative reports whether the verdict answers the detector's question
	// with a yes. Labels are only collected from affirmative verdicts.
	Affirmative(text string) bool
	Tag(text string) []moderation.ViolationLabel
}

type keywordRule struct {
	label    moderation.ViolationLabel
	keywords []string
}

// Matching is substring based with no negation handling, so "no weapon"
// still yields weapons.
var keywordRules = []keywordRule{
	{moderation.LabelBloodGore, []string{"BLOOD", "WOUND", "GORE", "INJURY"}},
	{moderation.LabelWeapons, []string{"WEAPON", "GUN", "KNIFE", "EXPLOSIVE"}},
	{moderation.LabelDeathCorpses, []string{"CORPSE", "DEAD", "HANGING", "AUTOPSY"}},
	{moderation.LabelSelfHarm, []string{"SELF-HARM", "CUTTING", "BURNING", "SUICIDAL"}},
	{moderation.LabelAbuseTorture, []string{"ABUSE", "TORTURE", "CRUELTY"}},
	{moderation.LabelDrugsParaphernalia, []string{"DRUG", "PARAPHERNALIA", "SYRINGE", "PIPE"}},
	{moderation.LabelAlcohol, []string{"ALCOHOL", "BEER", "WINE", "LIQUOR"}},
	{moderation.LabelSmoking, []string{"SMOKING", "CIGARETTE", "TOBACCO", "VAPE"}},
	{moderation.LabelHateSymbolsText, []string{"HATE", "SYMBOL", "EXTREMIST", "RACIST"}},
	{moderation.LabelPersonalInformation, []string{"PII", "PERSONAL", "IDENTIFIABLE", "PRIVATE"}},
	{moderation.LabelThreateningText, []string{"THREAT", "ABUSIVE", "HARASSMENT"}},
	{moderation.LabelQRCodesText, []string{"QR", "CODE", "BARCODE"}},
}

type keywordTagger struct {
	rules []keywordRule
}

func NewKeywordTagger() Tagger {
	return &keywordTagger{rules: keywordRules}
}

func (t *keywordTagger) Affirmative(text string) bool {
	return strings.Contains(strings.ToUpper(text), affirmativeToken)
}

func (t *keywordTagger) Tag(text string) []moderation.ViolationLabel {
	if text == "" {
		return nil
	}
	upper := strings.ToUpper(text)
	var labels []moderation.ViolationLabel
	for _, rule := range t.rules {
		if containsAny(upper, rule.keywords) {
			labels = append(labels, rule.label)
		}
	}
	return labels
}
