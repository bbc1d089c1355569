package routes

import (
	"net/http"

	"clearing_proposals/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathProposals = "/proposals"
	PathTemplates = "/templates"
	PathPublic    = "/public"
	PathWebhooks  = "/webhooks"
)

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func addProposalRoutes(rg *gin.RouterGroup, proposalHandler *handlers.ProposalHandler, paymentHandler *handlers.PaymentHandler) {
	proposals := rg.Group(PathProposals)
	{
		proposals.POST("", proposalHandler.Generate)
		proposals.GET("/:id", proposalHandler.GetByID)
		proposals.GET("/:id/events", proposalHandler.ListEvents)
		proposals.POST("/:id/send", proposalHandler.Send)
		proposals.POST("/:id/expire", proposalHandler.Expire)
		proposals.GET("/:id/payment", paymentHandler.GetLatestByProposalID)
	}
}

func addCatalogRoutes(rg *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	templates := rg.Group(PathTemplates)
	{
		templates.GET("/:id", catalogHandler.GetTemplate)
		templates.PUT("/:id", catalogHandler.PutTemplate)
		templates.POST("/:id/snapshots", catalogHandler.CreateSnapshot)
		templates.GET("/:id/snapshots/:version", catalogHandler.GetSnapshot)
	}
}

func addPublicRoutes(rg *gin.RouterGroup, publicHandler *handlers.PublicProposalHandler) {
	proposals := rg.Group(PathProposals)
	{
		proposals.GET("/:id", publicHandler.View)
		proposals.POST("/:id/accept", publicHandler.Accept)
		proposals.POST("/:id/checkout", publicHandler.Checkout)
	}
}

func addWebhookRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	webhooks := rg.Group(PathWebhooks)
	{
		webhooks.POST("/mercadopago", paymentHandler.MercadoPagoWebhook)
	}
}
