package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/planwise/retirement-engine/internal/domain"
)

// LoadFromFile reads a household profile from a YAML file. Completeness is
// checked later by the builder, not here; the loader only rejects files that
// fail to parse or carry structurally impossible values.
func LoadFromFile(filename string) (*domain.HouseholdProfile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", filename, err)
	}
	return Parse(data)
}

// Parse decodes a household profile from YAML bytes.
func Parse(data []byte) (*domain.HouseholdProfile, error) {
	var p domain.HouseholdProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if err := validateShape(&p); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}
	return &p, nil
}

func validateShape(p *domain.HouseholdProfile) error {
	if p.Primary.Age <= 0 {
		return &domain.InvalidParameterError{Field: "primary.age", Reason: "must be positive"}
	}
	if p.Primary.AnnualIncome.IsNegative() {
		return &domain.InvalidParameterError{Field: "primary.annual_income", Reason: "cannot be negative"}
	}
	if p.Spouse != nil && p.Spouse.Age <= 0 {
		return &domain.InvalidParameterError{Field: "spouse.age", Reason: "must be positive"}
	}
	if p.Liabilities.IsNegative() {
		return &domain.InvalidParameterError{Field: "liabilities", Reason: "cannot be negative"}
	}
	return nil
}
