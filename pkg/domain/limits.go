package domain

import "github.com/entitygraph/core/pkg/properties"

// Limits bundles every size constant the engine enforces. The host injects
// one Limits value at startup; every commander reads from it rather than
// hard-coding a bound, so tests can exercise edge cases with a tiny config.
type Limits struct {
	MaxClasses                       int `json:"maxClasses"`
	MaxMaintainersPerClass           int `json:"maxMaintainersPerClass"`
	MaxCuratorsPerGroup              int `json:"maxCuratorsPerGroup"`
	MaxSchemasPerClass                int `json:"maxSchemasPerClass"`
	MaxPropertiesPerClass            int `json:"maxPropertiesPerClass"`
	MaxOpsPerBatch                   int `json:"maxOpsPerBatch"`
	VecMaxLength                     uint16 `json:"vecMaxLength"`
	TextMaxLength                    uint16 `json:"textMaxLength"`
	MaxEntitiesPerClass               uint64 `json:"maxEntitiesPerClass"`
	IndividualEntitiesCreationLimit  uint64 `json:"individualEntitiesCreationLimit"`

	ClassNameConstraint        properties.InputValidationLengthConstraint `json:"classNameConstraint"`
	ClassDescriptionConstraint properties.InputValidationLengthConstraint `json:"classDescriptionConstraint"`
	PropertyNameConstraint     properties.InputValidationLengthConstraint `json:"propertyNameConstraint"`
	PropertyDescriptionConstraint properties.InputValidationLengthConstraint `json:"propertyDescriptionConstraint"`
}

// DefaultLimits returns a reasonable set of bounds for local development and
// tests. Production deployments are expected to override every field from
// configuration.
func DefaultLimits() Limits {
	return Limits{
		MaxClasses:                      1000,
		MaxMaintainersPerClass:          100,
		MaxCuratorsPerGroup:             100,
		MaxSchemasPerClass:              100,
		MaxPropertiesPerClass:           100,
		MaxOpsPerBatch:                  50,
		VecMaxLength:                    1000,
		TextMaxLength:                   4096,
		MaxEntitiesPerClass:              1_000_000,
		IndividualEntitiesCreationLimit: 10_000,

		ClassNameConstraint:           properties.InputValidationLengthConstraint{Min: 1, MaxMinDiff: 99},
		ClassDescriptionConstraint:    properties.InputValidationLengthConstraint{Min: 0, MaxMinDiff: 4096},
		PropertyNameConstraint:        properties.InputValidationLengthConstraint{Min: 1, MaxMinDiff: 99},
		PropertyDescriptionConstraint: properties.InputValidationLengthConstraint{Min: 0, MaxMinDiff: 4096},
	}
}
