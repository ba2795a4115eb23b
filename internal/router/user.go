package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		// Public routes (no authentication required)
		users.POST("/register", r.authHandler.Register)
		users.POST("/login", r.authHandler.Login)
		users.POST("/refresh", r.authHandler.Refresh)

		// Protected routes (bearer access token required)
		protected := users.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.GET("/profile", r.userHandler.GetProfile)
			protected.PUT("/profile", r.userHandler.UpdateProfile)
			protected.PUT("/subscription", r.userHandler.UpdateSubscription)
			protected.GET("/progress", r.userHandler.GetProgress)
		}
	}
}
