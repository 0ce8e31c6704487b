package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"stores-api/internal/logging"
	"stores-api/internal/models"
	"stores-api/internal/mykafka"
	"stores-api/internal/service/search"
	"stores-api/internal/transport"
	"stores-api/internal/util"
)

type ItemHandler struct {
	DB       *gorm.DB
	Producer mykafka.Publisher
	ES       *elasticsearch.Client
	Index    string
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	var item models.Item
	if err := h.DB.WithContext(c.Request().Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Item not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Item{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var items []models.Item
	if err := h.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_create")

	var req transport.ItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, req.StoreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Store not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item := models.Item{Name: req.Name, Price: req.Price, StoreID: req.StoreID}
	if err := h.DB.WithContext(ctx).Create(&item).Error; err != nil {
		l.Error("item_create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, &item)
	h.publish(c, fmt.Sprint(item.ID), map[string]interface{}{
		"type":    "item_created",
		"item_id": item.ID,
		"name":    item.Name,
	})

	l.Info("item_created", "item_id", item.ID, "store_id", item.StoreID)
	return c.JSON(http.StatusCreated, item)
}

// PutItem updates name and price of an existing item, or creates the item
// under the given id when store_id is supplied.
func (h *ItemHandler) PutItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_put")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	var req transport.ItemUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var item models.Item
	err = h.DB.WithContext(ctx).First(&item, id).Error
	switch {
	case err == nil:
		item.Name = req.Name
		item.Price = req.Price
	case errors.Is(err, gorm.ErrRecordNotFound):
		if req.StoreID == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "store_id is required to create an item")
		}
		item = models.Item{ID: uint(id), Name: req.Name, Price: req.Price, StoreID: req.StoreID}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.WithContext(ctx).Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, &item)
	h.publish(c, fmt.Sprint(item.ID), map[string]interface{}{
		"type":    "item_updated",
		"item_id": item.ID,
		"name":    item.Name,
	})

	l.Info("item_updated", "item_id", item.ID)
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	var item models.Item
	if err := h.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Item not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Drop tag links before the row itself.
	if err := h.DB.WithContext(ctx).Model(&item).Association("Tags").Clear(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.WithContext(ctx).Delete(&item).Error; err != nil {
		l.Error("item_delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.deindex(c, item.ID)
	h.publish(c, fmt.Sprint(item.ID), map[string]interface{}{
		"type":    "item_deleted",
		"item_id": item.ID,
	})

	l.Info("item_deleted", "item_id", item.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Item deleted."})
}

func (h *ItemHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "item_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", "item_events", "error", err)
	}
}

func (h *ItemHandler) index(c echo.Context, item *models.Item) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.Index(ctx, h.ES, h.Index, item); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index error", "item_id", item.ID, "error", err)
	}
}

func (h *ItemHandler) deindex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.Delete(ctx, h.ES, h.Index, id); err != nil {
		logging.FromContext(c.Request().Context()).Error("es delete error", "item_id", id, "error", err)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
