package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/domain"
	"github.com/covidtimeseries/metadata/internal/validator"
)

// MetadataService defines the service operations the handler exposes
type MetadataService interface {
	GetDistribution(ctx context.Context, uuid string) (*domain.Distribution, error)
	DistributionOptions(ctx context.Context, uuid, filter string) ([]domain.Option, error)
	DistributionPaths(ctx context.Context, uuid string) (map[string]string, error)
	GetDatasetSpecification(ctx context.Context, uuid string) (*domain.DatasetSpecification, error)
	GetConceptualDomain(ctx context.Context, id string) (*domain.ConceptualDomain, error)
}

type uuidParams struct {
	UUID string `validate:"required,uuid"`
}

type optionsParams struct {
	UUID   string `validate:"required,uuid"`
	Filter string `validate:"omitempty,option_filter"`
}

type conceptualDomainParams struct {
	ID string `validate:"required,numeric,max=20"`
}

// MetadataHandler handles registry metadata endpoints
type MetadataHandler struct {
	service MetadataService
	logger  *zap.Logger
}

// NewMetadataHandler creates a new metadata handler
func NewMetadataHandler(service MetadataService, logger *zap.Logger) *MetadataHandler {
	return &MetadataHandler{
		service: service,
		logger:  logger,
	}
}

// GetDistribution handles GET /api/v1/distributions/:uuid
func (h *MetadataHandler) GetDistribution(c *fiber.Ctx) error {
	params := uuidParams{UUID: utils.CopyString(c.Params("uuid"))}
	if err := validator.Validate(params); err != nil {
		return validationResponse(c, err)
	}

	dist, err := h.service.GetDistribution(c.Context(), params.UUID)
	if err != nil {
		return serviceError(c, h.logger, err)
	}

	return c.JSON(dist)
}

// GetDistributionOptions handles GET /api/v1/distributions/:uuid/options
func (h *MetadataHandler) GetDistributionOptions(c *fiber.Ctx) error {
	params := optionsParams{
		UUID:   utils.CopyString(c.Params("uuid")),
		Filter: utils.CopyString(c.Query("filter")),
	}
	if err := validator.Validate(params); err != nil {
		return validationResponse(c, err)
	}

	opts, err := h.service.DistributionOptions(c.Context(), params.UUID, params.Filter)
	if err != nil {
		return serviceError(c, h.logger, err)
	}

	return c.JSON(DataResponse{Data: opts})
}

// GetDistributionPaths handles GET /api/v1/distributions/:uuid/paths
func (h *MetadataHandler) GetDistributionPaths(c *fiber.Ctx) error {
	params := uuidParams{UUID: utils.CopyString(c.Params("uuid"))}
	if err := validator.Validate(params); err != nil {
		return validationResponse(c, err)
	}

	paths, err := h.service.DistributionPaths(c.Context(), params.UUID)
	if err != nil {
		return serviceError(c, h.logger, err)
	}

	return c.JSON(DataResponse{Data: paths})
}

// GetDatasetSpecification handles GET /api/v1/dataset-specifications/:uuid
func (h *MetadataHandler) GetDatasetSpecification(c *fiber.Ctx) error {
	params := uuidParams{UUID: utils.CopyString(c.Params("uuid"))}
	if err := validator.Validate(params); err != nil {
		return validationResponse(c, err)
	}

	dss, err := h.service.GetDatasetSpecification(c.Context(), params.UUID)
	if err != nil {
		return serviceError(c, h.logger, err)
	}

	return c.JSON(dss)
}

// GetConceptualDomain handles GET /api/v1/conceptual-domains/:id
func (h *MetadataHandler) GetConceptualDomain(c *fiber.Ctx) error {
	params := conceptualDomainParams{ID: utils.CopyString(c.Params("id"))}
	if err := validator.Validate(params); err != nil {
		return validationResponse(c, err)
	}

	cd, err := h.service.GetConceptualDomain(c.Context(), params.ID)
	if err != nil {
		return serviceError(c, h.logger, err)
	}

	return c.JSON(cd)
}

// RegisterRoutes registers metadata routes under router
func (h *MetadataHandler) RegisterRoutes(router fiber.Router) {
	distributions := router.Group("/distributions")
	distributions.Get("/:uuid", h.GetDistribution)
	distributions.Get("/:uuid/options", h.GetDistributionOptions)
	distributions.Get("/:uuid/paths", h.GetDistributionPaths)

	router.Get("/dataset-specifications/:uuid", h.GetDatasetSpecification)
	router.Get("/conceptual-domains/:id", h.GetConceptualDomain)
}
