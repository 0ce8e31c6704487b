package httpserver

import (
	"github.com/labstack/echo/v4"

	"stores-api/internal/handlers"
	authmw "stores-api/internal/middleware/auth"
)

type Deps struct {
	Guard         *authmw.Guard
	AuthHandler   *handlers.AuthHandler
	StoreHandler  *handlers.StoreHandler
	ItemHandler   *handlers.ItemHandler
	TagHandler    *handlers.TagHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")
	g := d.Guard

	v1.POST("/user", d.AuthHandler.Register)
	v1.GET("/user", d.AuthHandler.ListUsers)
	v1.GET("/user/:id", d.AuthHandler.GetUser)
	v1.DELETE("/user/:id", d.AuthHandler.DeleteUser, g.RequireLogin)

	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout, g.RequireLogin)
	v1.POST("/refresh", d.AuthHandler.Refresh, g.RequireRefresh)

	v1.GET("/store", d.StoreHandler.ListStores)
	v1.POST("/store", d.StoreHandler.CreateStore, g.RequireFresh)
	v1.GET("/store/:id", d.StoreHandler.GetStore)
	v1.PUT("/store/:id", d.StoreHandler.PutStore, g.RequireLogin)
	v1.DELETE("/store/:id", d.StoreHandler.DeleteStore, g.RequireFresh)

	v1.GET("/item", d.ItemHandler.ListItems)
	v1.POST("/item", d.ItemHandler.CreateItem, g.RequireFresh)
	v1.GET("/item/:id", d.ItemHandler.GetItem)
	v1.PUT("/item/:id", d.ItemHandler.PutItem, g.RequireFresh)
	v1.DELETE("/item/:id", d.ItemHandler.DeleteItem, g.RequireAdmin)

	v1.GET("/store/:id/tag", d.TagHandler.ListStoreTags)
	v1.POST("/store/:id/tag", d.TagHandler.CreateTag, g.RequireLogin)
	v1.GET("/tag", d.TagHandler.ListTags)
	v1.GET("/tag/:id", d.TagHandler.GetTag)
	v1.DELETE("/tag/:id", d.TagHandler.DeleteTag, g.RequireLogin)
	v1.POST("/item/:id/tag/:tag_id", d.TagHandler.LinkTag, g.RequireLogin)
	v1.DELETE("/item/:id/tag/:tag_id", d.TagHandler.UnlinkTag, g.RequireLogin)

	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}
}
