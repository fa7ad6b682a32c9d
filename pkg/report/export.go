package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	appModeration "github.com/NeuralTrust/ImageGuard/pkg/app/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
)

type TierReference struct {
	Level    string   `json:"level"`
	Meaning  string   `json:"meaning"`
	Keywords []string `json:"keywords"`
}

type TableReference struct {
	Description string                   `json:"description"`
	Table       map[string]TierReference `json:"table"`
	Explanation map[string]string        `json:"explanation"`
}

type exportedReport struct {
	*moderation.Report
	ConfidenceTableReference TableReference `json:"confidence_table_reference"`
}

// ConfidenceTableReference renders the confidence tiers keyed by score.
func ConfidenceTableReference() TableReference {
	ref := TableReference{
		Description: "Confidence Score Reference Table",
		Table:       make(map[string]TierReference),
		Explanation: make(map[string]string),
	}
	for _, tier := range appModeration.ReferenceTable() {
		key := strconv.FormatFloat(float64(tier.Score), 'f', 1, 64)
		ref.Table[key] = TierReference{Level: tier.Level, Meaning: tier.Meaning, Keywords: tier.Keywords}
		ref.Explanation[key] = fmt.Sprintf("%s - %s", tier.Level, tier.Explanation)
	}
	return ref
}

// MarshalJSON returns the indented report with the confidence reference table.
func MarshalJSON(r *moderation.Report) ([]byte, error) {
	return json.MarshalIndent(exportedReport{
		Report:                   r,
		ConfidenceTableReference: ConfidenceTableReference(),
	}, "", "  ")
}

func WriteJSON(w io.Writer, r *moderation.Report) error {
	data, err := MarshalJSON(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ExportJSON writes the report to path, creating parent directories.
func ExportJSON(path string, r *moderation.Report) error {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
