package routes

import (
	"fixmycity-be/controllers"
	"fixmycity-be/middlewares"
	authUtils "fixmycity-be/utils"

	"github.com/gin-gonic/gin"
)

// ReportRoutes sets up the report routes. Submission is open; listing and
// voting need any authenticated caller; the admin group needs the admin role.
func ReportRoutes(r *gin.Engine, rc *controllers.ReportController, tokens *authUtils.TokenService) {
	reports := r.Group("/reports")
	{
		reports.POST("", rc.Create)
		reports.GET("", middlewares.Auth(tokens), rc.List)
		reports.GET("/analytics", middlewares.Auth(tokens), middlewares.RequireAdmin(), rc.Analytics)
		reports.GET("/:id", middlewares.Auth(tokens), rc.Get)
		reports.POST("/:id/vote", middlewares.Auth(tokens), rc.Vote)

		admin := reports.Group("/admin", middlewares.Auth(tokens), middlewares.RequireAdmin())
		{
			admin.POST("/assign/:id/:userId", rc.Assign)
			admin.POST("/status/:id/:status", rc.UpdateStatus)
			admin.DELETE("/delete/:id", rc.Delete)
		}
	}
}
