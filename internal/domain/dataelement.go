package domain

// DataElement describes a single field's semantics in the registry
type DataElement struct {
	UUID               string              `json:"uuid"`
	AristotleID        string              `json:"aristotleId,omitempty"`
	Name               string              `json:"name"`
	Definition         string              `json:"definition,omitempty"`
	ValueDomain        *ValueDomain        `json:"valueDomain,omitempty"`
	DataElementConcept *DataElementConcept `json:"dataElementConcept,omitempty"`
}

// ValueDomain describes the representation of a data element's values
type ValueDomain struct {
	UUID                string             `json:"uuid,omitempty"`
	DataType            *DataType          `json:"dataType,omitempty"`
	PermissibleValueSet []PermissibleValue `json:"permissiblevalueSet,omitempty"`
}

// DataType names the primitive type of a value domain
type DataType struct {
	Name string `json:"name"`
}

// PermissibleValue is one allowed value of a value domain
type PermissibleValue struct {
	ID           string        `json:"id"`
	Value        string        `json:"value"`
	Meaning      string        `json:"meaning,omitempty"`
	ValueMeaning *ValueMeaning `json:"valueMeaning,omitempty"`
}

// ValueMeaning is the concept a permissible value stands for
type ValueMeaning struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Definition string `json:"definition,omitempty"`
}

// DataElementConcept links a data element to the property it measures
type DataElementConcept struct {
	Property *Property `json:"property,omitempty"`
}

// Property is the characteristic a data element concept refers to
type Property struct {
	UUID        string `json:"uuid,omitempty"`
	AristotleID string `json:"aristotleId,omitempty"`
	Name        string `json:"name"`
}

// PropertyName returns the concept property's name, or "" when the
// registry did not link one.
func (de *DataElement) PropertyName() string {
	if de == nil || de.DataElementConcept == nil || de.DataElementConcept.Property == nil {
		return ""
	}
	return de.DataElementConcept.Property.Name
}
