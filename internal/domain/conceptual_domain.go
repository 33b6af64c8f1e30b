package domain

// ConceptualDomain is a named set of value meanings shared across data elements
type ConceptualDomain struct {
	// ID is the registry id the domain was requested by
	ID              string         `json:"id"`
	UUID            string         `json:"uuid"`
	Name            string         `json:"name"`
	ValueMeaningSet []ValueMeaning `json:"valuemeaningSet"`
}
