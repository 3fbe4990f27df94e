package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-listing-dashboard/config"
	"github.com/yeremiapane/food-listing-dashboard/controllers"
	"github.com/yeremiapane/food-listing-dashboard/database"
	"github.com/yeremiapane/food-listing-dashboard/middlewares"
	"github.com/yeremiapane/food-listing-dashboard/realtime"
	"github.com/yeremiapane/food-listing-dashboard/reports"
	"github.com/yeremiapane/food-listing-dashboard/repository"
	"github.com/yeremiapane/food-listing-dashboard/services"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

// Dependencies are the long lived components the routes are built on.
// Archive and Tokens may be nil. Notifier defaults to Hub.
type Dependencies struct {
	Config   *config.Config
	Store    *database.Store
	Hub      *realtime.Hub
	Notifier controllers.ChangeNotifier
	Archive  *services.ReportArchive
	Tokens   *utils.TokenManager
}

func SetupRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.Config.CORSOrigin))
	if d.Config.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(d.Config.RateLimit, time.Second).RateLimit())
	}

	notifier := d.Notifier
	if notifier == nil {
		notifier = d.Hub
	}

	listingRepo := repository.NewListingRepository(d.Store)
	listingController := controllers.NewListingController(listingRepo, notifier)
	reportController := controllers.NewReportController(reports.NewRunner(d.Store), d.Archive)
	authController := controllers.NewAuthController(d.Tokens, d.Config.Auth)

	r.GET("/ping", func(c *gin.Context) {
		if err := d.Store.Ping(c.Request.Context()); err != nil {
			utils.RespondFailure(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "pong", gin.H{
			"database": d.Store.Driver(),
			"clients":  d.Hub.Clients(),
		})
	})

	r.POST("/login", middlewares.NewStrictRateLimiter(time.Minute, 5), authController.Login)
	r.GET("/options", listingController.GetOptions)
	r.GET("/ws/listings", d.Hub.Handle)

	listings := r.Group("/listings")
	{
		listings.GET("", listingController.GetAllListings)
		listings.GET("/:food_id", listingController.GetListing)
	}

	reportRoutes := r.Group("/reports")
	{
		reportRoutes.GET("", reportController.GetCatalog)
		reportRoutes.GET("/:key", reportController.RunReport)
		reportRoutes.GET("/:key/export.csv", reportController.ExportCSV)
		reportRoutes.GET("/:key/export.pdf", reportController.ExportPDF)
		reportRoutes.GET("/:key/chart.png", reportController.Chart)
	}

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(d.Tokens), middlewares.RoleCheck(utils.RoleOperator))
	{
		admin.POST("/logout", authController.Logout)

		admin.POST("/listings", listingController.CreateListing)
		admin.PUT("/listings/:food_id", listingController.UpdateListing)
		admin.PATCH("/listings/:food_id", listingController.UpdateListing)
		admin.DELETE("/listings/:food_id", listingController.DeleteListing)

		admin.POST("/query", reportController.RunQuery)
		admin.POST("/reports/:key/archive", reportController.ArchiveReport)
	}

	return r
}
