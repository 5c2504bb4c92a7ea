package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/services"
)

// CreateAddressRequest adds an address. UserID defaults to the caller and the
// type to PRIMARY.
type CreateAddressRequest struct {
	UserID      uint               `json:"user_id"`
	Street      string             `json:"street" binding:"required,max=255"`
	City        string             `json:"city" binding:"required,max=100"`
	State       string             `json:"state" binding:"max=100"`
	ZipCode     string             `json:"zip_code" binding:"required,max=20"`
	Country     string             `json:"country" binding:"required,max=100"`
	AddressType models.AddressType `json:"address_type" binding:"omitempty,oneof=PRIMARY SECONDARY"`
}

type UpdateAddressRequest struct {
	Street      *string             `json:"street" binding:"omitempty,min=1,max=255"`
	City        *string             `json:"city" binding:"omitempty,min=1,max=100"`
	State       *string             `json:"state" binding:"omitempty,max=100"`
	ZipCode     *string             `json:"zip_code" binding:"omitempty,min=1,max=20"`
	Country     *string             `json:"country" binding:"omitempty,min=1,max=100"`
	AddressType *models.AddressType `json:"address_type" binding:"omitempty,oneof=PRIMARY SECONDARY"`
}

type AddressController struct {
	addresses *services.AddressService
}

func NewAddressController(addresses *services.AddressService) *AddressController {
	return &AddressController{addresses: addresses}
}

// ListAddresses handles GET /api/v1/addresses?user_id=&type=
func (ctl *AddressController) ListAddresses(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var filter services.AddressFilter
	if filter.UserID, ok = queryID(c, "user_id"); !ok {
		return
	}
	if raw := c.Query("type"); raw != "" {
		kind := models.AddressType(raw)
		filter.Type = &kind
	}

	addresses, err := ctl.addresses.List(c.Request.Context(), p, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, addresses)
}

// GetAddress handles GET /api/v1/addresses/:id
func (ctl *AddressController) GetAddress(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	address, err := ctl.addresses.Get(c.Request.Context(), p, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, address)
}

// CreateAddress handles POST /api/v1/addresses
func (ctl *AddressController) CreateAddress(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.UserID == 0 {
		req.UserID = p.UserID
	}

	address, err := ctl.addresses.Create(c.Request.Context(), p, services.AddressInput{
		UserID:      req.UserID,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Country:     req.Country,
		AddressType: req.AddressType,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, address)
}

// UpdateAddress handles PATCH /api/v1/addresses/:id
func (ctl *AddressController) UpdateAddress(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	address, err := ctl.addresses.Update(c.Request.Context(), p, id, services.UpdateAddressInput{
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Country:     req.Country,
		AddressType: req.AddressType,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, address)
}

// DeleteAddress handles DELETE /api/v1/addresses/:id
func (ctl *AddressController) DeleteAddress(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctl.addresses.Delete(c.Request.Context(), p, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
