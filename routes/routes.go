package routes

import (
	"net/http"

	"github.com/Mayank561/ECOMMERCE-API/controllers"
	"github.com/Mayank561/ECOMMERCE-API/middlewares"
	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted by RegisterRoutes.
type Controllers struct {
	Categories *controllers.CategoryController
	Products   *controllers.ProductController
	Orders     *controllers.OrderController
	Users      *controllers.UserController
	Search     *controllers.SearchController
}

// RegisterRoutes mounts the API under apiURL. Catalog reads, search, login
// and registration are public. Placing and reading orders needs a token;
// everything else needs an admin token.
func RegisterRoutes(r *gin.Engine, apiURL string, tokens middlewares.TokenValidator, ctrls Controllers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	api := r.Group(apiURL)
	auth := middlewares.JWTMiddleware(tokens)
	requireAdmin := middlewares.RequireAdmin()

	categories := api.Group("/categories")
	{
		categories.GET("", ctrls.Categories.GetCategories)
		categories.GET("/:id", ctrls.Categories.GetCategory)
		categories.POST("", auth, requireAdmin, ctrls.Categories.CreateCategory)
		categories.PUT("/:id", auth, requireAdmin, ctrls.Categories.UpdateCategory)
		categories.DELETE("/:id", auth, requireAdmin, ctrls.Categories.DeleteCategory)
	}

	products := api.Group("/products")
	{
		products.GET("", ctrls.Products.GetProducts)
		products.GET("/:id", ctrls.Products.GetProduct)
		products.GET("/get/count", ctrls.Products.GetProductCount)
		products.GET("/get/featured/:count", ctrls.Products.GetFeaturedProducts)
		products.POST("", auth, requireAdmin, ctrls.Products.CreateProduct)
		products.PUT("/:id", auth, requireAdmin, ctrls.Products.UpdateProduct)
		products.DELETE("/:id", auth, requireAdmin, ctrls.Products.DeleteProduct)
		products.PUT("/gallery-images/:id", auth, requireAdmin, ctrls.Products.UpdateGalleryImages)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", auth, ctrls.Orders.CreateOrder)
		orders.GET("/:id", auth, ctrls.Orders.GetOrder)
		orders.GET("/get/userorders/:userid", auth, ctrls.Orders.GetUserOrders)
		orders.GET("", auth, requireAdmin, ctrls.Orders.GetOrders)
		orders.PUT("/:id", auth, requireAdmin, ctrls.Orders.UpdateOrder)
		orders.DELETE("/:id", auth, requireAdmin, ctrls.Orders.DeleteOrder)
		orders.GET("/get/totalsales", auth, requireAdmin, ctrls.Orders.GetTotalSales)
		orders.GET("/get/count", auth, requireAdmin, ctrls.Orders.GetOrderCount)
	}

	users := api.Group("/users")
	{
		users.POST("/login", ctrls.Users.Login)
		users.POST("/register", ctrls.Users.Register)
		users.GET("", auth, requireAdmin, ctrls.Users.GetUsers)
		users.GET("/:id", auth, requireAdmin, ctrls.Users.GetUser)
		users.POST("", auth, requireAdmin, ctrls.Users.CreateUser)
		users.PUT("/:id", auth, requireAdmin, ctrls.Users.UpdateUser)
		users.DELETE("/:id", auth, requireAdmin, ctrls.Users.DeleteUser)
		users.GET("/get/count", auth, requireAdmin, ctrls.Users.GetUserCount)
	}

	search := api.Group("/search")
	{
		search.GET("", ctrls.Search.Search)
		search.POST("/suggest", auth, ctrls.Search.Suggest)
	}
}
