// Package domain contains the registry entities the service reads and the
// flat records it hands to the UI.
//
// The entity types mirror the selection sets of the registry queries
// field for field, so their JSON form matches what the registry returned.
// They are immutable snapshots: nothing in this service writes them back.
//
// # Key Entities
//
//   - Distribution: a data file's structure as ordered element paths
//   - DataElement: a field's semantics, optionally with a ValueDomain
//   - DatasetSpecification: included data elements and their derivations
//   - ConceptualDomain: a named set of value meanings
//   - Option: a flattened data element for select lists
//
// Optional parts of the graph are pointers; a nil pointer means the
// registry did not supply that part.
package domain
