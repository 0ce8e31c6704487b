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

type TagHandler struct {
	DB *gorm.DB
}

func (h *TagHandler) ListStoreTags(c echo.Context) error {
	ctx := c.Request().Context()

	storeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid store id")
	}

	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Store not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var tags []models.Tag
	if err := h.DB.WithContext(ctx).Where("store_id = ?", storeID).Order("id ASC").Find(&tags).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) CreateTag(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tag_create")

	storeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid store id")
	}

	var req transport.TagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Store not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var existing models.Tag
	err = h.DB.WithContext(ctx).
		Where("store_id = ? AND name = ?", storeID, req.Name).
		First(&existing).Error
	if err == nil {
		l.Warn("tag_create_failed", "status", 400, "reason", "duplicate_name", "store_id", storeID)
		return echo.NewHTTPError(http.StatusBadRequest, "A Tag with that name already exists in this Store.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	tag := models.Tag{Name: req.Name, StoreID: uint(storeID)}
	if err := h.DB.WithContext(ctx).Create(&tag).Error; err != nil {
		l.Error("tag_create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("tag_created", "tag_id", tag.ID, "store_id", tag.StoreID)
	return c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) GetTag(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tag id")
	}

	var tag models.Tag
	if err := h.DB.WithContext(c.Request().Context()).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Tag not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) ListTags(c echo.Context) error {
	var tags []models.Tag
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&tags).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tags)
}

// DeleteTag refuses while any item is still linked.
func (h *TagHandler) DeleteTag(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tag_delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tag id")
	}

	var tag models.Tag
	if err := h.DB.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Tag not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	linked := h.DB.WithContext(ctx).Model(&tag).Association("Items").Count()
	if linked > 0 {
		l.Warn("tag_delete_failed", "status", 400, "reason", "items_linked", "tag_id", tag.ID, "linked", linked)
		return echo.NewHTTPError(http.StatusBadRequest, "Couldn't delete Tag. Unlink all items from it.")
	}

	if err := h.DB.WithContext(ctx).Delete(&tag).Error; err != nil {
		l.Error("tag_delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("tag_deleted", "tag_id", tag.ID)
	return c.JSON(http.StatusAccepted, echo.Map{"message": "Tag deleted."})
}

// LinkTag associates an item with a tag from the same store.
func (h *TagHandler) LinkTag(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tag_link")

	item, tag, err := h.itemAndTag(c)
	if err != nil {
		return err
	}

	if item.StoreID != tag.StoreID {
		l.Warn("tag_link_failed", "status", 400, "reason", "store_mismatch",
			"item_store", item.StoreID, "tag_store", tag.StoreID)
		return echo.NewHTTPError(http.StatusBadRequest, "Store ID is not the same for this Tag and Item.")
	}

	if err := h.DB.WithContext(ctx).Model(item).Association("Tags").Append(tag); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("tag_linked", "item_id", item.ID, "tag_id", tag.ID)
	return c.JSON(http.StatusCreated, tag)
}

// UnlinkTag removes the association. Removing an absent link is a no-op.
func (h *TagHandler) UnlinkTag(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tag_unlink")

	item, tag, err := h.itemAndTag(c)
	if err != nil {
		return err
	}

	if err := h.DB.WithContext(ctx).Model(item).Association("Tags").Delete(tag); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("tag_unlinked", "item_id", item.ID, "tag_id", tag.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Item unlinked from tag",
		"item":    item,
		"tag":     tag,
	})
}

func (h *TagHandler) itemAndTag(c echo.Context) (*models.Item, *models.Tag, error) {
	ctx := c.Request().Context()

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	tagID, err := strconv.Atoi(c.Param("tag_id"))
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid tag id")
	}

	var item models.Item
	if err := h.DB.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, echo.NewHTTPError(http.StatusNotFound, "Item not found.")
		}
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var tag models.Tag
	if err := h.DB.WithContext(ctx).First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, echo.NewHTTPError(http.StatusNotFound, "Tag not found.")
		}
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return &item, &tag, nil
}
