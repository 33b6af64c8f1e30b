package domain

// Distribution describes a data file's structure via ordered element paths
type Distribution struct {
	Name                           string                        `json:"name"`
	DistributionDataElementPathSet []DistributionDataElementPath `json:"distributiondataelementpathSet"`
}

// DistributionDataElementPath places a data element at a logical path in the file
type DistributionDataElementPath struct {
	LogicalPath string       `json:"logicalPath"`
	DataElement *DataElement `json:"dataElement,omitempty"`
}

// Option is a data element flattened for a UI select list
type Option struct {
	Value              string `json:"value"`
	ID                 string `json:"id"`
	Definition         string `json:"definition"`
	Text               string `json:"text"`
	AristotleTooltipID string `json:"aristotleTooltipId"`
}
