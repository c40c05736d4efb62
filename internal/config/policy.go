package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy is the customer-facing refund policy document. The refund window
// itself is fixed and not part of the document.
type Policy struct {
	Summary          string   `yaml:"summary" json:"summary"`
	SuggestedReasons []string `yaml:"suggested_reasons" json:"suggestedReasons"`
}

func DefaultPolicy() Policy {
	return Policy{
		Summary: "Refunds can be requested within 24 hours of purchase, " +
			"provided the product has not been downloaded or accessed.",
		SuggestedReasons: []string{
			"Purchased by mistake",
			"Duplicate purchase",
			"Product not as described",
			"Changed my mind",
			"Other",
		},
	}
}

// LoadPolicy reads the policy file at path. An empty path or a missing file
// yields DefaultPolicy; fields left empty in the file keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return policy, nil
		}
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	var f Policy
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}
	if f.Summary != "" {
		policy.Summary = f.Summary
	}
	if len(f.SuggestedReasons) > 0 {
		policy.SuggestedReasons = f.SuggestedReasons
	}

	return policy, nil
}
