// Package options flattens fetched registry graphs into records a UI can
// render directly. Everything here is pure: no I/O, no errors beyond an
// unknown filter name.
package options

import (
	"fmt"
	"strings"

	"github.com/covidtimeseries/metadata/internal/domain"
)

// DataTypeNumber is the registry data type name of numeric value domains
const DataTypeNumber = "Number"

// Filter decides whether a data element is included in an option list
type Filter func(de *domain.DataElement) bool

// Filter names accepted by FilterByName
const (
	FilterAll    = "all"
	FilterNumber = "number"
	FilterValues = "values"
)

// FilterNames lists the names FilterByName understands, for help texts
var FilterNames = []string{FilterAll, FilterNumber, FilterValues}

// DistributionOptions builds one option per path entry of dist whose data
// element passes filter. A nil filter keeps every entry. Entries without a
// data element are skipped.
func DistributionOptions(dist *domain.Distribution, filter Filter) []domain.Option {
	options := make([]domain.Option, 0)
	if dist == nil {
		return options
	}
	for _, dep := range dist.DistributionDataElementPathSet {
		de := dep.DataElement
		if de == nil {
			continue
		}
		if filter != nil && !filter(de) {
			continue
		}
		options = append(options, domain.Option{
			Value:              de.UUID,
			ID:                 de.AristotleID,
			Definition:         de.Definition,
			Text:               de.PropertyName(),
			AristotleTooltipID: de.AristotleID,
		})
	}
	return options
}

// FilterNumberDataElements keeps data elements whose value domain's data
// type is "Number".
func FilterNumberDataElements(de *domain.DataElement) bool {
	if de == nil || de.ValueDomain == nil || de.ValueDomain.DataType == nil {
		return false
	}
	return de.ValueDomain.DataType.Name == DataTypeNumber
}

// FilterValueDataElements keeps data elements whose value domain lists at
// least one permissible value.
func FilterValueDataElements(de *domain.DataElement) bool {
	if de == nil || de.ValueDomain == nil {
		return false
	}
	return len(de.ValueDomain.PermissibleValueSet) > 0
}

// MapDistributionData maps each data element uuid in dist to its logical
// path. Entries without a data element are left out; a uuid listed twice
// keeps its last path.
func MapDistributionData(dist *domain.Distribution) map[string]string {
	paths := make(map[string]string)
	if dist == nil {
		return paths
	}
	for _, dep := range dist.DistributionDataElementPathSet {
		if dep.DataElement != nil {
			paths[dep.DataElement.UUID] = dep.LogicalPath
		}
	}
	return paths
}

// FilterByName resolves a filter name from a request. "" and "all" return
// a nil filter.
func FilterByName(name string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FilterAll:
		return nil, nil
	case FilterNumber:
		return FilterNumberDataElements, nil
	case FilterValues:
		return FilterValueDataElements, nil
	default:
		return nil, fmt.Errorf("unknown filter %q, expected one of %s", name, strings.Join(FilterNames, ", "))
	}
}
