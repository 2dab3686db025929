package simulation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nvandessel/potency/internal/models"
)

// profiles is the fixed registry of stability profiles. It is never mutated;
// lookups return copies.
var profiles = map[string]models.StabilityProfile{
	"Frozen": {
		Key:              "Frozen",
		ActivationEnergy: 90000,
		FrequencyFactor:  1e13,
		StorageMinC:      -80,
		StorageMaxC:      -60,
	},
	"Refrigerated": {
		Key:              "Refrigerated",
		ActivationEnergy: 90000,
		FrequencyFactor:  1e13,
		StorageMinC:      2,
		StorageMaxC:      8,
	},
	"Room Temperature": {
		Key:              "Room Temperature",
		ActivationEnergy: 75000,
		FrequencyFactor:  5e12,
		StorageMinC:      15,
		StorageMaxC:      25,
	},
}

// LookupProfile returns the profile registered under key.
func LookupProfile(key string) (models.StabilityProfile, error) {
	p, ok := profiles[key]
	if !ok {
		return models.StabilityProfile{}, fmt.Errorf("%w: unknown stability profile %q (valid: %s)",
			ErrInvalidParameter, key, strings.Join(ProfileKeys(), ", "))
	}
	return p, nil
}

// ProfileKeys returns the registered profile keys in sorted order.
func ProfileKeys() []string {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Profiles returns a copy of every registered profile, sorted by key.
func Profiles() []models.StabilityProfile {
	keys := ProfileKeys()
	out := make([]models.StabilityProfile, len(keys))
	for i, k := range keys {
		out[i] = profiles[k]
	}
	return out
}

// ValidateProfile checks that the kinetic parameters are positive and finite.
func ValidateProfile(p models.StabilityProfile) error {
	if !(p.ActivationEnergy > 0) || math.IsInf(p.ActivationEnergy, 0) {
		return fmt.Errorf("%w: activation energy must be positive and finite, got %v", ErrInvalidParameter, p.ActivationEnergy)
	}
	if !(p.FrequencyFactor > 0) || math.IsInf(p.FrequencyFactor, 0) {
		return fmt.Errorf("%w: frequency factor must be positive and finite, got %v", ErrInvalidParameter, p.FrequencyFactor)
	}
	return nil
}
