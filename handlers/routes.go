package handlers

import (
	"github.com/gin-gonic/gin"

	"stock-journal/middleware"
	"stock-journal/web"
)

// Router wires every page and API route.
func (h *Handler) Router() (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.RequestLogger(), gin.CustomRecovery(h.Recovery))
	router.Use(middleware.Authenticate(h.sessions, h.store, h.secureCookie))
	router.NoRoute(h.NotFound)

	// Public routes
	router.GET("/", h.Index)
	router.GET("/register", h.RegisterForm)
	router.POST("/register", h.Register)
	router.GET("/login", h.LoginForm)
	router.POST("/login", h.Login)

	// Protected pages
	pages := router.Group("/")
	pages.Use(middleware.RequireUser(func(c *gin.Context) {
		flash(c, "info", "Please log in to access this page", h.secureCookie)
	}))
	{
		pages.GET("/logout", h.Logout)
		pages.POST("/logout", h.Logout)
		pages.GET("/dashboard", h.Dashboard)
		pages.GET("/trades", h.ListTrades)
		pages.POST("/trades", h.CreateTrade)
		pages.POST("/trades/:id/delete", h.DeleteTrade)
		pages.GET("/reflections", h.ListReflections)
		pages.POST("/reflections", h.SaveReflection)
		pages.POST("/reflections/:id/delete", h.DeleteReflection)
		pages.GET("/reports", h.Reports)
	}

	// Protected API
	api := router.Group("/api")
	api.Use(middleware.RequireAPIUser())
	{
		api.PUT("/trades/:id", h.UpdateTrade)
		api.GET("/reports", h.ReportJSON)
	}

	return router, nil
}
