// Package offer drives the quote flow end to end: validate answers, load
// the catalog, calculate, persist and export.
package offer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"

	"bks/internal"
)

// LoadAnswers reads and validates a form-answers JSON file.
func LoadAnswers(path string) (internal.FormAnswers, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.FormAnswers{}, err
	}

	var answers internal.FormAnswers
	if err := json.Unmarshal(blob, &answers); err != nil {
		return internal.FormAnswers{}, fmt.Errorf("decode answers: %w", err)
	}
	if err := ValidateAnswers(answers); err != nil {
		return internal.FormAnswers{}, err
	}
	return answers, nil
}

// ValidateAnswers is the upstream gate the calculator relies on: enum
// membership, positive area and the curb field dependency are enforced
// here, not during calculation.
func ValidateAnswers(a internal.FormAnswers) error {
	if !lo.Contains(internal.AllMaterials, a.Material) {
		return fmt.Errorf("unknown material: %q", a.Material)
	}
	if a.Area <= 0 {
		return fmt.Errorf("area must be positive, got %v", a.Area)
	}
	if !lo.Contains(internal.AllPreparations, a.Preparation) {
		return fmt.Errorf("unknown preparation: %q", a.Preparation)
	}
	if !lo.Contains(internal.AllUsages, a.Usage) {
		return fmt.Errorf("unknown usage: %q", a.Usage)
	}
	if !lo.Contains(internal.AllGrouts, a.Grout) {
		return fmt.Errorf("unknown grout: %q", a.Grout)
	}
	if a.CurbNeeded != internal.AnswerYes && a.CurbNeeded != internal.AnswerNo {
		return fmt.Errorf("curbNeeded must be %q or %q, got %q", internal.AnswerYes, internal.AnswerNo, a.CurbNeeded)
	}
	if a.WantsCurb() {
		if a.CurbLength == nil || *a.CurbLength <= 0 {
			return fmt.Errorf("curbLength is required and must be positive when curbing is requested")
		}
		if a.CurbMaterial == nil || !lo.Contains(internal.AllCurbMaterials, *a.CurbMaterial) {
			return fmt.Errorf("curbMaterial is required when curbing is requested")
		}
	}
	return nil
}
