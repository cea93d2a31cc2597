package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyEntry holds the deadlines (in hours) agreed with a carrier for
// orders from a given platform.
type PolicyEntry struct {
	ConfirmDeadlineHours  float64 `yaml:"confirmDeadlineHours" json:"confirmDeadlineHours"`
	HandoverDeadlineHours float64 `yaml:"handoverDeadlineHours" json:"handoverDeadlineHours"`
}

// PolicyKey identifies a policy matrix cell
type PolicyKey struct {
	Platform Platform
	Carrier  string
}

// PolicyMatrix maps (platform, carrier) pairs to their SLA deadlines.
// A missing cell is a defined condition, not an error: evaluation
// classifies such orders as unknown.
type PolicyMatrix struct {
	entries map[PolicyKey]PolicyEntry
}

// NewPolicyMatrix creates a matrix from explicit entries
func NewPolicyMatrix(entries map[PolicyKey]PolicyEntry) *PolicyMatrix {
	copied := make(map[PolicyKey]PolicyEntry, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &PolicyMatrix{entries: copied}
}

// Lookup returns the policy entry for a (platform, carrier) pair
func (m *PolicyMatrix) Lookup(platform Platform, carrier string) (PolicyEntry, bool) {
	entry, ok := m.entries[PolicyKey{Platform: platform, Carrier: carrier}]
	return entry, ok
}

// Len returns the number of cells in the matrix
func (m *PolicyMatrix) Len() int {
	return len(m.entries)
}

// DefaultPolicyMatrix returns the built-in platform×carrier deadlines.
// TikTok handovers are the tightest; website orders routed economy get
// the most slack.
func DefaultPolicyMatrix() *PolicyMatrix {
	return NewPolicyMatrix(map[PolicyKey]PolicyEntry{
		{PlatformTikTok, CarrierJTExpress}:    {ConfirmDeadlineHours: 24, HandoverDeadlineHours: 48},
		{PlatformTikTok, CarrierViettelPost}:  {ConfirmDeadlineHours: 24, HandoverDeadlineHours: 48},
		{PlatformShopee, CarrierGHTK}:         {ConfirmDeadlineHours: 48, HandoverDeadlineHours: 72},
		{PlatformShopee, CarrierJTExpress}:    {ConfirmDeadlineHours: 48, HandoverDeadlineHours: 72},
		{PlatformShopee, CarrierViettelPost}:  {ConfirmDeadlineHours: 48, HandoverDeadlineHours: 96},
		{PlatformWebsite, CarrierJTExpress}:   {ConfirmDeadlineHours: 24, HandoverDeadlineHours: 48},
		{PlatformWebsite, CarrierGHTK}:        {ConfirmDeadlineHours: 72, HandoverDeadlineHours: 120},
		{PlatformWebsite, CarrierViettelPost}: {ConfirmDeadlineHours: 72, HandoverDeadlineHours: 120},
	})
}

// policyFile is the YAML on-disk shape of the matrix
type policyFile struct {
	Policies []struct {
		Platform              string  `yaml:"platform"`
		Carrier               string  `yaml:"carrier"`
		ConfirmDeadlineHours  float64 `yaml:"confirmDeadlineHours"`
		HandoverDeadlineHours float64 `yaml:"handoverDeadlineHours"`
	} `yaml:"policies"`
}

// LoadPolicyMatrix reads a policy matrix from a YAML file
func LoadPolicyMatrix(path string) (*PolicyMatrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if len(file.Policies) == 0 {
		return nil, fmt.Errorf("policy file %s contains no policies", path)
	}

	entries := make(map[PolicyKey]PolicyEntry, len(file.Policies))
	for i, p := range file.Policies {
		if p.Platform == "" || p.Carrier == "" {
			return nil, fmt.Errorf("policy %d: platform and carrier are required", i)
		}
		if p.ConfirmDeadlineHours <= 0 {
			return nil, fmt.Errorf("policy %d: confirmDeadlineHours must be positive", i)
		}
		entries[PolicyKey{Platform: Platform(p.Platform), Carrier: p.Carrier}] = PolicyEntry{
			ConfirmDeadlineHours:  p.ConfirmDeadlineHours,
			HandoverDeadlineHours: p.HandoverDeadlineHours,
		}
	}

	return NewPolicyMatrix(entries), nil
}
