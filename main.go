package main

import (
	"context"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/postal"
	"storefront/internal/store"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	config.Load()
	cfg := config.AppEnv

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("mongo connect failed")
	}
	db := client.Database(cfg.DBName)
	log.WithField("db", db.Name()).Info("mongo connected")

	if err := database.EnsureProductIndexes(db); err != nil {
		log.WithError(err).Warn("product index bootstrap")
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.WithError(err).Warn("user index bootstrap")
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.WithError(err).Warn("order index bootstrap")
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.WithError(err).Warn("cart index bootstrap")
	}

	products := store.NewProductStore(db)
	orders := store.NewOrderStore(db)
	carts := store.NewCartStore(db)
	users := store.NewUserStore(db)

	saver := cart.NewSaver(carts, cfg.CartSaveDelay, log.WithField("component", "cart-saver"))
	defer saver.Close(context.Background())

	gateway := payment.NewGateway(cfg.GatewayURL, cfg.GatewaySecret, log.WithField("component", "payment-gateway"))
	cep := postal.NewClient(cfg.ViaCEPURL)

	workflow := checkout.NewWorkflow(
		products,
		products,
		orders,
		gateway,
		saver,
		cfg.PixKey,
		log.WithField("component", "checkout"),
	)

	policy := auth.NewRolePolicy(models.RoleAdmin)

	r := gin.Default()

	r.GET("/products", handlers.GetProducts(products))
	r.GET("/products/:id", handlers.GetProduct(products))
	r.GET("/cep/:cep", handlers.LookupCEP(cep))

	r.POST("/auth/register", handlers.Register(users, cfg.JWTSecret, cfg.AccessTokenTTL))
	r.POST("/auth/login", handlers.Login(users, cfg.JWTSecret, cfg.AccessTokenTTL))
	r.GET("/auth/me", middleware.UserAuth(cfg.JWTSecret), handlers.GetMe(users))

	cartRoutes := r.Group("/cart")
	cartRoutes.Use(middleware.OptionalUserAuth(cfg.JWTSecret))
	{
		cartRoutes.GET("", handlers.GetCart(saver))
		cartRoutes.POST("/items", handlers.AddCartItem(saver, products))
		cartRoutes.PUT("/items/:productId", handlers.SetCartItemQuantity(saver))
		cartRoutes.DELETE("/items/:productId", handlers.RemoveCartItem(saver))
		cartRoutes.DELETE("", handlers.ClearCart(saver))
	}
	r.POST("/cart/merge", middleware.UserAuth(cfg.JWTSecret), handlers.MergeCart(saver, carts))

	user := r.Group("/", middleware.UserAuth(cfg.JWTSecret))
	{
		user.POST("/orders", handlers.Checkout(workflow, saver))
		user.GET("/orders", handlers.GetMyOrders(orders))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret, policy))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetProducts(products))
		admin.POST("/products", handlers.CreateProduct(products))
		admin.PUT("/products/:id", handlers.UpdateProduct(products))
		admin.DELETE("/products/:id", handlers.DeleteProduct(products))

		admin.GET("/orders", handlers.GetAllOrders(orders))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(orders))
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
