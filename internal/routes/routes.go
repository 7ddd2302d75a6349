// Package routes wires controllers, middleware and operational endpoints
// onto a gin engine.
package routes

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/foodgram-api/internal/admin"
	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/franciscosanchezn/foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/franciscosanchezn/foodgram-api/internal/storage"
	"github.com/franciscosanchezn/foodgram-api/internal/validation"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLogLevel sets the log level for the routes package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Deps is what the router needs from the outside world.
type Deps struct {
	DB                 *gorm.DB
	Storage            storage.Storage
	JWTSecret          string
	RateLimitPerMinute int
	ServiceName        string
}

// Setup registers every route on router. The returned function releases
// background resources held by the middleware.
func Setup(router *gin.Engine, deps Deps) func() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Register(v)
	}

	secret := []byte(deps.JWTSecret)
	oauthService := auth.NewOAuthService(deps.DB, deps.JWTSecret)

	userService := services.NewUserService(deps.DB)
	subscriptionService := services.NewSubscriptionService(deps.DB)
	tagService := services.NewTagService(deps.DB)
	ingredientService := services.NewIngredientService(deps.DB)
	recipeService := services.NewRecipeService(deps.DB, deps.Storage)
	favoriteService := services.NewFavoriteService(deps.DB)
	cartService := services.NewCartService(deps.DB)
	clientService := services.NewClientService(deps.DB)

	authController := controllers.NewAuthController(userService, oauthService)
	userController := controllers.NewUserController(userService, subscriptionService, recipeService, deps.Storage)
	tagController := controllers.NewTagController(tagService)
	ingredientController := controllers.NewIngredientController(ingredientService)
	recipeController := controllers.NewRecipeController(recipeService, favoriteService, cartService, subscriptionService, deps.Storage)
	clientController := controllers.NewClientController(clientService)
	adminController := controllers.NewAdminController(admin.NewSite(deps.DB))

	router.Use(middleware.RequestLogger(), middleware.Metrics())

	router.GET("/health", healthCheckHandler(deps.ServiceName))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if local, ok := deps.Storage.(*storage.LocalStorage); ok {
		router.Static(mediaPath(local.BaseURL()), local.Root())
	}

	requireAuth := middleware.OAuth2Auth(secret)
	optionalAuth := middleware.OptionalAuth(secret)

	throttle := func(c *gin.Context) { c.Next() }
	stop := func() {}
	if deps.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(deps.RateLimitPerMinute, time.Minute)
		throttle = middleware.RateLimit(limiter)
		stop = limiter.Stop
	}

	v1 := router.Group("/api/v1")
	{
		authApi := v1.Group("/auth", throttle)
		{
			authApi.POST("/register", authController.Register)
			authApi.POST("/login", authController.Login)
		}

		oauthApi := v1.Group("/oauth", throttle)
		{
			oauthApi.POST("/token", oauthService.HandleToken)
			oauthApi.GET("/authorize", requireAuth, oauthService.HandleAuthorize)
		}

		usersApi := v1.Group("/users")
		{
			usersApi.GET("", optionalAuth, userController.ListUsers)
			usersApi.GET("/me", requireAuth, userController.Me)
			usersApi.GET("/subscriptions", requireAuth, userController.Subscriptions)
			usersApi.POST("/set_password", requireAuth, authController.SetPassword)
			usersApi.GET("/:id", optionalAuth, userController.GetUser)
			usersApi.POST("/:id/subscribe", requireAuth, userController.Subscribe)
			usersApi.DELETE("/:id/subscribe", requireAuth, userController.Unsubscribe)
		}

		tagsApi := v1.Group("/tags", optionalAuth, middleware.RequirePermission(permissions.StaffOrReadOnly{}))
		{
			tagsApi.GET("", tagController.ListTags)
			tagsApi.POST("", tagController.CreateTag)
			tagsApi.GET("/:id", tagController.GetTag)
			tagsApi.PATCH("/:id", tagController.UpdateTag)
			tagsApi.DELETE("/:id", tagController.DeleteTag)
		}

		ingredientsApi := v1.Group("/ingredients", optionalAuth, middleware.RequirePermission(permissions.StaffOrReadOnly{}))
		{
			ingredientsApi.GET("", ingredientController.ListIngredients)
			ingredientsApi.POST("", ingredientController.CreateIngredient)
			ingredientsApi.GET("/:id", ingredientController.GetIngredient)
			ingredientsApi.PATCH("/:id", ingredientController.UpdateIngredient)
			ingredientsApi.DELETE("/:id", ingredientController.DeleteIngredient)
		}

		recipesApi := v1.Group("/recipes", optionalAuth, middleware.RequirePermission(permissions.AuthorOrReadOnly{}))
		{
			recipesApi.GET("", recipeController.ListRecipes)
			recipesApi.POST("", recipeController.CreateRecipe)
			recipesApi.GET("/download_shopping_cart", recipeController.DownloadShoppingCart)
			recipesApi.GET("/:id", recipeController.GetRecipe)
			recipesApi.PATCH("/:id", recipeController.UpdateRecipe)
			recipesApi.DELETE("/:id", recipeController.DeleteRecipe)
			recipesApi.POST("/:id/favorite", recipeController.AddFavorite)
			recipesApi.DELETE("/:id/favorite", recipeController.RemoveFavorite)
			recipesApi.POST("/:id/shopping_cart", recipeController.AddToCart)
			recipesApi.DELETE("/:id/shopping_cart", recipeController.RemoveFromCart)
		}

		clientsApi := v1.Group("/clients", requireAuth)
		{
			clientsApi.GET("", clientController.ListClients)
			clientsApi.POST("", clientController.CreateClient)
			clientsApi.DELETE("/:id", clientController.DeleteClient)
		}

		adminApi := v1.Group("/admin", requireAuth, middleware.RequireStaff())
		{
			adminApi.GET("", adminController.Registry)
			adminApi.GET("/models/:model", adminController.ListRows)
			adminApi.DELETE("/models/:model/:id", adminController.DeleteRow)
			adminApi.GET("/recipes/:id", adminController.RecipeForm)
			adminApi.PUT("/recipes/:id/ingredients", adminController.ReplaceRecipeIngredients)
		}
	}

	log.WithField("routes", len(router.Routes())).Info("Routes registered")
	return stop
}

// mediaPath is the URL path local media is served under.
func mediaPath(base string) string {
	path := base
	if u, err := url.Parse(base); err == nil && u.Path != "" {
		path = u.Path
	}
	path = "/" + strings.Trim(path, "/")
	if path == "/" {
		return "/media"
	}
	return path
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   service,
		})
	}
}
