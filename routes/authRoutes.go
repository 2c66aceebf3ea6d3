package routes

import (
	"fixmycity-be/controllers"
	"fixmycity-be/middlewares"
	authUtils "fixmycity-be/utils"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, ac *controllers.AuthController, tokens *authUtils.TokenService) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", ac.Signup)
		auth.POST("/login", ac.Login)
		auth.POST("/forgot-password", ac.ForgotPassword)
		auth.POST("/reset-password", ac.ResetPassword)
		auth.GET("/me", middlewares.Auth(tokens), ac.Me)
	}
}
