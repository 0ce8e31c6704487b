package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"stores-api/internal/models"
)

func TestCreateTagDuplicatePerStore(t *testing.T) {
	env := newTestEnv(t)
	store := createStore(t, env, "grocery")
	other := createStore(t, env, "hardware")

	createTag(t, env, "sale", store.ID)

	// Same name in the same store is rejected.
	_, c := env.doJSONRequest(http.MethodPost, "/store/:id/tag", map[string]string{"name": "sale"})
	c.SetParamNames("id")
	c.SetParamValues(itoa(store.ID))
	err := env.Tg.CreateTag(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "A Tag with that name already exists in this Store.", he.Message)

	// Same name under a different store is fine.
	tag := createTag(t, env, "sale", other.ID)
	require.Equal(t, other.ID, tag.StoreID)
}

func TestLinkTagStoreMismatch(t *testing.T) {
	env := newTestEnv(t)
	store1 := createStore(t, env, "grocery")
	store2 := createStore(t, env, "hardware")
	item := createItem(t, env, "apples", store1.ID)
	tag := createTag(t, env, "tools", store2.ID)

	_, c := env.doJSONRequest(http.MethodPost, "/item/:id/tag/:tag_id", nil)
	c.SetParamNames("id", "tag_id")
	c.SetParamValues(itoa(item.ID), itoa(tag.ID))
	err := env.Tg.LinkTag(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "Store ID is not the same for this Tag and Item.", he.Message)
}

func TestLinkAndUnlinkTag(t *testing.T) {
	env := newTestEnv(t)
	store := createStore(t, env, "grocery")
	item := createItem(t, env, "apples", store.ID)
	tag := createTag(t, env, "fruit", store.ID)

	rec, c := env.doJSONRequest(http.MethodPost, "/item/:id/tag/:tag_id", nil)
	c.SetParamNames("id", "tag_id")
	c.SetParamValues(itoa(item.ID), itoa(tag.ID))
	require.NoError(t, env.Tg.LinkTag(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var linked models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &linked))
	require.Equal(t, tag.ID, linked.ID)

	count := env.DB.Model(&models.Item{ID: item.ID}).Association("Tags").Count()
	require.Equal(t, int64(1), count)

	rec, c = env.doJSONRequest(http.MethodDelete, "/item/:id/tag/:tag_id", nil)
	c.SetParamNames("id", "tag_id")
	c.SetParamValues(itoa(item.ID), itoa(tag.ID))
	require.NoError(t, env.Tg.UnlinkTag(c))
	require.Equal(t, http.StatusOK, rec.Code)

	count = env.DB.Model(&models.Item{ID: item.ID}).Association("Tags").Count()
	require.Equal(t, int64(0), count)
}

func TestUnlinkAbsentTagIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	store := createStore(t, env, "grocery")
	item := createItem(t, env, "apples", store.ID)
	tag := createTag(t, env, "fruit", store.ID)

	rec, c := env.doJSONRequest(http.MethodDelete, "/item/:id/tag/:tag_id", nil)
	c.SetParamNames("id", "tag_id")
	c.SetParamValues(itoa(item.ID), itoa(tag.ID))
	require.NoError(t, env.Tg.UnlinkTag(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteTagWithLinkedItems(t *testing.T) {
	env := newTestEnv(t)
	store := createStore(t, env, "grocery")
	item := createItem(t, env, "apples", store.ID)
	tag := createTag(t, env, "fruit", store.ID)

	_, c := env.doJSONRequest(http.MethodPost, "/item/:id/tag/:tag_id", nil)
	c.SetParamNames("id", "tag_id")
	c.SetParamValues(itoa(item.ID), itoa(tag.ID))
	require.NoError(t, env.Tg.LinkTag(c))

	_, c = env.doJSONRequest(http.MethodDelete, "/tag/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(tag.ID))
	err := env.Tg.DeleteTag(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "Couldn't delete Tag. Unlink all items from it.", he.Message)

	// After unlinking, deletion succeeds.
	_, c = env.doJSONRequest(http.MethodDelete, "/item/:id/tag/:tag_id", nil)
	c.SetParamNames("id", "tag_id")
	c.SetParamValues(itoa(item.ID), itoa(tag.ID))
	require.NoError(t, env.Tg.UnlinkTag(c))

	rec, c := env.doJSONRequest(http.MethodDelete, "/tag/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(tag.ID))
	require.NoError(t, env.Tg.DeleteTag(c))
	require.Equal(t, http.StatusAccepted, rec.Code)

	_, c = env.doJSONRequest(http.MethodGet, "/tag/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(tag.ID))
	err = env.Tg.GetTag(c)
	code, _ := httpErrCode(t, err)
	require.Equal(t, http.StatusNotFound, code)
}

func TestListStoreTags(t *testing.T) {
	env := newTestEnv(t)
	store := createStore(t, env, "grocery")
	createTag(t, env, "fruit", store.ID)
	createTag(t, env, "sale", store.ID)

	rec, c := env.doJSONRequest(http.MethodGet, "/store/:id/tag", nil)
	c.SetParamNames("id")
	c.SetParamValues(itoa(store.ID))
	require.NoError(t, env.Tg.ListStoreTags(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var tags []models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	require.Len(t, tags, 2)

	_, c = env.doJSONRequest(http.MethodGet, "/store/:id/tag", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	err := env.Tg.ListStoreTags(c)
	code, _ := httpErrCode(t, err)
	require.Equal(t, http.StatusNotFound, code)
}
