package models

// StabilityProfile is a named bundle of kinetic parameters and reference
// storage bounds for a product class.
type StabilityProfile struct {
	Key string `json:"key" yaml:"key"`

	// ActivationEnergy is Ea in J/mol.
	ActivationEnergy float64 `json:"activation_energy_j_per_mol" yaml:"activation_energy_j_per_mol"`

	// FrequencyFactor is the Arrhenius pre-exponential factor A (1/hour).
	FrequencyFactor float64 `json:"frequency_factor" yaml:"frequency_factor"`

	// StorageMinC and StorageMaxC are the labeled storage range.
	// Reporting context only.
	StorageMinC float64 `json:"storage_min_c" yaml:"storage_min_c"`
	StorageMaxC float64 `json:"storage_max_c" yaml:"storage_max_c"`
}

// InRange reports whether tempC lies within the labeled storage range.
func (p StabilityProfile) InRange(tempC float64) bool {
	return tempC >= p.StorageMinC && tempC <= p.StorageMaxC
}
