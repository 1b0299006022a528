package handler

import (
	"errors"
	"net/http"

	"passvault/api/middleware"
	"passvault/internal/dto"
	"passvault/internal/entity"
	"passvault/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type VaultHandler struct {
	Service  *service.VaultService
	Validate *validator.Validate
}

func NewVaultHandler(svc *service.VaultService, validate *validator.Validate) *VaultHandler {
	return &VaultHandler{Service: svc, Validate: validate}
}

func (h *VaultHandler) List(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	items, err := h.Service.List(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, dto.VaultItemsFromEntities(items))
}

func (h *VaultHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.CreateVaultItemRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		// Vault fields are not security-sensitive, so field detail is fine.
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "validation failed",
			"details": err.Error(),
		})
	}
	item := &entity.VaultItem{
		Title:    req.Title,
		Username: req.Username,
		URL:      req.URL,
		Password: req.Password,
		Notes:    req.Notes,
	}
	if err := h.Service.Create(c.Request().Context(), userID, item); err != nil {
		return writeServiceError(c, err)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusCreated, map[string]string{"id": item.ID.String()})
}

func (h *VaultHandler) Delete(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid item id"))
	}
	if err := h.Service.Delete(c.Request().Context(), userID, itemID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *VaultHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
