// Package testutil provides shared test fixtures for the metadata service.
package testutil

import (
	"github.com/covidtimeseries/metadata/internal/domain"
)

// TestUUID is a well-formed uuid used as the subject of fixture lookups.
const TestUUID = "6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f"

// NewTestDistribution creates a distribution with one number-typed element,
// one element with permissible values and one path without a data element.
func NewTestDistribution() *domain.Distribution {
	return &domain.Distribution{
		Name: "Cases",
		DistributionDataElementPathSet: []domain.DistributionDataElementPath{
			{
				LogicalPath: "confirmed",
				DataElement: &domain.DataElement{
					UUID:        "de-number",
					AristotleID: "101",
					Name:        "Confirmed",
					Definition:  "Confirmed cases",
					ValueDomain: &domain.ValueDomain{DataType: &domain.DataType{Name: "Number"}},
					DataElementConcept: &domain.DataElementConcept{
						Property: &domain.Property{Name: "Confirmed cases"},
					},
				},
			},
			{
				LogicalPath: "state",
				DataElement: &domain.DataElement{
					UUID:        "de-values",
					AristotleID: "102",
					Name:        "State",
					ValueDomain: &domain.ValueDomain{
						DataType:            &domain.DataType{Name: "String"},
						PermissibleValueSet: []domain.PermissibleValue{{Value: "NSW", Meaning: "New South Wales"}},
					},
				},
			},
			{LogicalPath: "dangling"},
		},
	}
}

// NewTestDatasetSpecification creates a dataset specification with two included elements.
func NewTestDatasetSpecification() *domain.DatasetSpecification {
	return &domain.DatasetSpecification{
		UUID:        TestUUID,
		AristotleID: "55",
		Name:        "Daily counts",
		DSSDEInclusionSet: []domain.DSSDEInclusion{
			{DataElement: &domain.DatasetDataElement{UUID: "de-number", AristotleID: "101", Name: "Confirmed"}},
			{DataElement: &domain.DatasetDataElement{UUID: "de-values", AristotleID: "102", Name: "State"}},
		},
	}
}

// NewTestConceptualDomain creates a conceptual domain with two value meanings.
func NewTestConceptualDomain(id string) *domain.ConceptualDomain {
	return &domain.ConceptualDomain{
		ID:   id,
		UUID: "cd-1",
		Name: "States",
		ValueMeaningSet: []domain.ValueMeaning{
			{ID: "1", Name: "New South Wales", Definition: "NSW"},
			{ID: "2", Name: "Victoria", Definition: "VIC"},
		},
	}
}
