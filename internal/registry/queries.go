package registry

import (
	"context"
	"errors"

	"github.com/covidtimeseries/metadata/internal/domain"
	"github.com/covidtimeseries/metadata/internal/pkg/metrics"
)

// Root fields addressed by the domain queries
const (
	RootDistributions         = "distributions"
	RootDatasetSpecifications = "datasetSpecifications"
	RootConceptualDomains     = "conceptualDomains"
)

var distributionDocument = document{
	Operation:   "distribution",
	Root:        RootDistributions,
	Description: "Could not fetch distribution metadata",
	Variables:   []string{"uuid"},
	Query: `
query Distribution($uuid: UUID) {
  distributions(uuid: $uuid) {
    edges {
      node {
        name
        distributiondataelementpathSet {
          logicalPath
          dataElement {
            name
            definition
            aristotleId
            uuid
            valueDomain {
              uuid
              dataType {
                name
              }
              permissiblevalueSet {
                id
                value
                meaning
                valueMeaning {
                  id
                  name
                }
              }
            }
            dataElementConcept {
              property {
                aristotleId
                uuid
                name
              }
            }
          }
        }
      }
    }
  }
}`,
}

var datasetSpecificationDocument = document{
	Operation:   "dataset_specification",
	Root:        RootDatasetSpecifications,
	Description: "Could not fetch dataset metadata",
	Variables:   []string{"uuid"},
	Query: `
query DatasetSpecification($uuid: UUID) {
  datasetSpecifications(uuid: $uuid) {
    edges {
      node {
        name
        uuid
        aristotleId
        dssdeinclusionSet {
          dataElement {
            uuid
            aristotleId
            name
            dataElementConcept {
              property {
                name
              }
            }
            dedinputsthroughSet {
              dataElementDerivation {
                uuid
                aristotleId
                name
                dedderivesthroughSet {
                  dataElement {
                    uuid
                    aristotleId
                    name
                    dataElementConcept {
                      property {
                        name
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`,
}

var conceptualDomainDocument = document{
	Operation:   "conceptual_domain",
	Root:        RootConceptualDomains,
	Description: "Could not fetch conceptual domain metadata",
	Variables:   []string{"id"},
	Query: `
query ConceptualDomain($id: String) {
  conceptualDomains(aristotleId: $id) {
    edges {
      node {
        name
        uuid
        valuemeaningSet {
          name
          id
          definition
        }
      }
    }
  }
}`,
}

// documents lists every fixed query, for validation at construction
var documents = []document{
	distributionDocument,
	datasetSpecificationDocument,
	conceptualDomainDocument,
}

// QueryDistribution fetches a distribution and its data element paths by uuid
func (c *Client) QueryDistribution(ctx context.Context, uuid string) (*domain.Distribution, error) {
	return fetch[domain.Distribution](ctx, c, distributionDocument, map[string]any{"uuid": uuid})
}

// QueryDatasetSpecification fetches a dataset specification, its included
// data elements and their derivations by uuid
func (c *Client) QueryDatasetSpecification(ctx context.Context, uuid string) (*domain.DatasetSpecification, error) {
	return fetch[domain.DatasetSpecification](ctx, c, datasetSpecificationDocument, map[string]any{"uuid": uuid})
}

// QueryConceptualDomain fetches a conceptual domain and its value meanings
// by registry id. The returned domain carries id.
func (c *Client) QueryConceptualDomain(ctx context.Context, id string) (*domain.ConceptualDomain, error) {
	cd, err := fetch[domain.ConceptualDomain](ctx, c, conceptualDomainDocument, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	cd.ID = id
	return cd, nil
}

// fetch runs doc, validates the response and returns the first node. Any
// failure is wrapped with doc.Description.
func fetch[T any](ctx context.Context, c *Client, doc document, variables map[string]any) (*T, error) {
	resp, err := c.execute(ctx, doc.Operation, doc.Query, variables)
	if err != nil {
		return nil, wrapFetchError(doc.Description, err)
	}
	node, err := firstNode[T](resp, doc.Root)
	if err != nil {
		metrics.RecordRejectedResponse(doc.Operation, rejectionReason(err))
		return nil, wrapFetchError(doc.Description, err)
	}
	return &node, nil
}

func rejectionReason(err error) string {
	var gqlErr *GraphQLError
	switch {
	case errors.As(err, &gqlErr):
		return metrics.ReasonGraphQLErrors
	case errors.Is(err, ErrEmptyResult):
		return metrics.ReasonEmpty
	default:
		return metrics.ReasonMalformed
	}
}
