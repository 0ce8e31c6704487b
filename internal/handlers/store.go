package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"stores-api/internal/logging"
	"stores-api/internal/models"
	"stores-api/internal/transport"
)

type StoreHandler struct {
	DB *gorm.DB
}

func (h *StoreHandler) GetStore(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid store id")
	}

	var store models.Store
	if err := h.DB.WithContext(c.Request().Context()).First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Store not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) ListStores(c echo.Context) error {
	var stores []models.Store
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&stores).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stores)
}

func (h *StoreHandler) CreateStore(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store_create")

	var req transport.StoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var existing models.Store
	err := h.DB.WithContext(ctx).Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		l.Warn("store_create_failed", "status", 400, "reason", "duplicate_name")
		return echo.NewHTTPError(http.StatusBadRequest, "A Store with this name already exists.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	store := models.Store{Name: req.Name}
	if err := h.DB.WithContext(ctx).Create(&store).Error; err != nil {
		l.Error("store_create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("store_created", "store_id", store.ID)
	return c.JSON(http.StatusCreated, store)
}

// PutStore renames an existing store or creates one under the given id.
func (h *StoreHandler) PutStore(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid store id")
	}

	var req transport.StoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var store models.Store
	err = h.DB.WithContext(ctx).First(&store, id).Error
	switch {
	case err == nil:
		store.Name = req.Name
	case errors.Is(err, gorm.ErrRecordNotFound):
		store = models.Store{ID: uint(id), Name: req.Name}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.WithContext(ctx).Save(&store).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) DeleteStore(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store_delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid store id")
	}

	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Store not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.WithContext(ctx).Delete(&store).Error; err != nil {
		l.Error("store_delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("store_deleted", "store_id", store.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Store deleted."})
}
