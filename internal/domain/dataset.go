package domain

// DatasetSpecification is a registry dataset and the data elements it includes
type DatasetSpecification struct {
	UUID              string           `json:"uuid"`
	AristotleID       string           `json:"aristotleId,omitempty"`
	Name              string           `json:"name"`
	DSSDEInclusionSet []DSSDEInclusion `json:"dssdeinclusionSet"`
}

// DSSDEInclusion includes one data element in a dataset specification
type DSSDEInclusion struct {
	DataElement *DatasetDataElement `json:"dataElement,omitempty"`
}

// DatasetDataElement is a data element as selected by the dataset query,
// including the derivations it is an input to.
type DatasetDataElement struct {
	UUID                string              `json:"uuid"`
	AristotleID         string              `json:"aristotleId,omitempty"`
	Name                string              `json:"name"`
	DataElementConcept  *DataElementConcept `json:"dataElementConcept,omitempty"`
	DEDInputsThroughSet []DEDInputsThrough  `json:"dedinputsthroughSet,omitempty"`
}

// DEDInputsThrough links a data element to a derivation that consumes it
type DEDInputsThrough struct {
	DataElementDerivation *DataElementDerivation `json:"dataElementDerivation,omitempty"`
}

// DataElementDerivation derives further data elements from its inputs
type DataElementDerivation struct {
	UUID                 string              `json:"uuid"`
	AristotleID          string              `json:"aristotleId,omitempty"`
	Name                 string              `json:"name"`
	DEDDerivesThroughSet []DEDDerivesThrough `json:"dedderivesthroughSet,omitempty"`
}

// DEDDerivesThrough links a derivation to a data element it produces
type DEDDerivesThrough struct {
	DataElement *DataElement `json:"dataElement,omitempty"`
}

// DerivedDataElements returns the data elements reachable from de through
// its derivations, in registry order. Missing links are skipped.
func (de *DatasetDataElement) DerivedDataElements() []DataElement {
	if de == nil {
		return nil
	}
	var derived []DataElement
	for _, input := range de.DEDInputsThroughSet {
		if input.DataElementDerivation == nil {
			continue
		}
		for _, out := range input.DataElementDerivation.DEDDerivesThroughSet {
			if out.DataElement != nil {
				derived = append(derived, *out.DataElement)
			}
		}
	}
	return derived
}
