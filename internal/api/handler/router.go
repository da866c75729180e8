package handler

import (
	"igire/backend/internal/api/middleware"
	"igire/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, tokens middleware.Verifier, trustedProxies []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.Logger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		h.Logger.Warn("invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	requireAuth := middleware.AuthMiddleware(tokens)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	staffOnly := middleware.RequireRole(models.RoleAdmin, models.RoleInstitution)

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws/dashboard", requireAuth, staffOnly, h.ServeDashboard)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)

		// Gateway callbacks carry no user token.
		api.POST("/ussd", h.USSDCallback)
		api.POST("/sms/incoming", h.IncomingSMS)
		api.POST("/voice/callback", h.VoiceCallback)

		api.GET("/rewards", h.ListRewards)
		api.GET("/institutions", h.ListInstitutions)
		api.GET("/institutions/:id", h.GetInstitution)
	}

	protected := api.Group("")
	protected.Use(requireAuth)
	{
		protected.GET("/complaints", h.ListComplaints)
		protected.GET("/complaints/stats", staffOnly, h.ComplaintStats)
		protected.GET("/complaints/:id", h.GetComplaint)
		protected.POST("/complaints", h.CreateComplaint)
		protected.POST("/complaints/media", h.CreateMediaComplaint)
		protected.PATCH("/complaints/:id", h.UpdateComplaint)
		protected.DELETE("/complaints/:id", adminOnly, h.DeleteComplaint)

		protected.POST("/categorize", h.Categorize)

		protected.POST("/institutions", adminOnly, h.CreateInstitution)
		protected.PUT("/institutions/:id", adminOnly, h.UpdateInstitution)
		protected.DELETE("/institutions/:id", adminOnly, h.DeleteInstitution)

		protected.GET("/users", adminOnly, h.ListUsers)
		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpdateProfile)
		protected.POST("/profile/redeem", h.Redeem)
		protected.GET("/redemptions", adminOnly, h.ListRedemptions)
		protected.POST("/redemptions/:id/complete", adminOnly, h.CompleteRedemption)

		protected.GET("/predictions", staffOnly, h.ListPredictions)
		protected.POST("/predictions", adminOnly, h.CreatePrediction)
		protected.POST("/predictions/generate", adminOnly, h.GeneratePredictions)
		protected.DELETE("/predictions/:id", adminOnly, h.DeletePrediction)

		protected.POST("/sms/send", staffOnly, h.SendSMS)
	}

	return router
}
