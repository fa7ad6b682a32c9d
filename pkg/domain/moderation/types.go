package moderation

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type Decision string

const (
	DecisionAccept Decision = "Accept"
	DecisionFlag   Decision = "Flag"
	DecisionReject Decision = "Reject"
)

// Confidence is a discrete certainty tier attached to one detector output.
// It is not a calibrated probability, except for the nudity detector which
// reports its own per-region scores.
type Confidence float64

const (
	ConfidenceVeryHigh   Confidence = 0.9
	ConfidenceHigh       Confidence = 0.8
	ConfidenceMediumHigh Confidence = 0.6
	ConfidenceNeutral    Confidence = 0.5
	ConfidenceMediumLow  Confidence = 0.4
	ConfidenceLow        Confidence = 0.1
	ConfidenceNone       Confidence = 0.0
)

type ViolationLabel string

const (
	LabelBloodGore           ViolationLabel = "blood/gore"
	LabelWeapons             ViolationLabel = "weapons"
	LabelDeathCorpses        ViolationLabel = "death/corpses"
	LabelSelfHarm            ViolationLabel = "self-harm"
	LabelAbuseTorture        ViolationLabel = "abuse/torture"
	LabelDrugsParaphernalia  ViolationLabel = "drugs/paraphernalia"
	LabelDrugs               ViolationLabel = "drugs"
	LabelAlcohol             ViolationLabel = "alcohol"
	LabelSmoking             ViolationLabel = "smoking"
	LabelHateSymbolsText     ViolationLabel = "hate symbols"
	LabelHateSymbols         ViolationLabel = "hate_symbols"
	LabelPersonalInformation ViolationLabel = "personal information"
	LabelThreateningText     ViolationLabel = "threatening/abusive text"
	LabelQRCodesText         ViolationLabel = "qr codes"
	LabelQRCodes             ViolationLabel = "qr_codes"
	LabelNudity              ViolationLabel = "nudity"
	LabelImageProcessing     ViolationLabel = "image_processing_error"
	LabelPipelineError       ViolationLabel = "pipeline_error"
)

// Detector names double as report keys.
const (
	AgentIngestion       = "ingestion"
	AgentNudity          = "nudity"
	AgentNudityException = "nudity_exceptions"
	AgentViolence        = "violence"
	AgentDrugs           = "drugs"
	AgentAlcoholSmoking  = "alcohol_smoking"
	AgentHate            = "hate"
	AgentPIIText         = "pii_text"
	AgentQRCode          = "qr_code"
)

// AgentNames lists every detector in pipeline order.
func AgentNames() []string {
	return []string{
		AgentIngestion,
		AgentNudity,
		AgentNudityException,
		AgentViolence,
		AgentDrugs,
		AgentAlcoholSmoking,
		AgentHate,
		AgentPIIText,
		AgentQRCode,
	}
}
