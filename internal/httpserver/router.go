package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/zefir_shop/pkg/metrics"
	middleware "github.com/Skotchmaster/zefir_shop/pkg/middleware/auth"
)

type Deps struct {
	DB      *gorm.DB
	Metrics *metrics.ServerMetrics

	AccountHandler  *AccountHTTP
	CatalogHandler  *CatalogHTTP
	CategoryHandler *CategoryHTTP
	ThematicHandler *ThematicHTTP
	BasketHandler   *BasketHTTP
	OrderHandler    *OrderHTTP

	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	authMW := middleware.NewBearerAuth(d.JWTSecret)

	accounts := e.Group("/accounts")
	accounts.POST("/register", d.AccountHandler.Register)
	accounts.POST("/login", d.AccountHandler.Login)
	accounts.DELETE("/delete", d.AccountHandler.DeleteByCredentials)
	accounts.POST("/refresh", d.AccountHandler.Refresh, authMW.AllowExpired)
	accounts.PATCH("/logout", d.AccountHandler.Logout, authMW.AllowExpired)

	accountsAdmin := accounts.Group("", authMW.RequireAdmin)
	accountsAdmin.GET("/all", d.AccountHandler.ListUsers)
	accountsAdmin.GET("/:key", d.AccountHandler.GetUser)
	accountsAdmin.DELETE("/:id", d.AccountHandler.DeleteByID)

	products := e.Group("/products")
	products.GET("", d.CatalogHandler.ListProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	productsAdmin := products.Group("", authMW.RequireAdmin)
	productsAdmin.POST("", d.CatalogHandler.CreateProduct)
	productsAdmin.PUT("/:id", d.CatalogHandler.UpdateProduct)
	productsAdmin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	categories := e.Group("/categories")
	categories.GET("", d.CategoryHandler.List)
	categories.GET("/:name", d.CategoryHandler.Get)

	categoriesAdmin := categories.Group("", authMW.RequireAdmin)
	categoriesAdmin.POST("", d.CategoryHandler.Create)
	categoriesAdmin.PUT("/:name", d.CategoryHandler.Update)
	categoriesAdmin.DELETE("/:name", d.CategoryHandler.Delete)

	thematics := e.Group("/thematics")
	thematics.GET("", d.ThematicHandler.List)

	thematicsAdmin := thematics.Group("", authMW.RequireAdmin)
	thematicsAdmin.POST("", d.ThematicHandler.Create)
	thematicsAdmin.DELETE("/:name", d.ThematicHandler.Delete)

	basket := e.Group("/basket", authMW.RequireAuth)
	basket.GET("", d.BasketHandler.Get)
	basket.POST("", d.BasketHandler.Add)
	basket.DELETE("", d.BasketHandler.Remove)

	orders := e.Group("/orders")
	orders.GET("", d.OrderHandler.Mine, authMW.RequireAuth)
	orders.POST("", d.OrderHandler.Create, authMW.RequireAuth)
	orders.GET("/all", d.OrderHandler.All, authMW.RequireAdmin)
	orders.PUT("/:id", d.OrderHandler.UpdateStatus, authMW.RequireAdmin)
}

func (d *Deps) ready(c echo.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	if err := sqlDB.PingContext(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
