package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mwd-agent/internal/middleware"
)

const serviceVersion = "1.1.0"

// Deps bundles everything the router wires together.
type Deps struct {
	Strategy *StrategyHandler
	Webhook  *WebhookHandler
	Slack    *SlackHandler
	GChat    *GChatHandler
	// ConfigStatus maps service name to "configured" / "missing" / "optional"
	// for the status endpoint.
	ConfigStatus map[string]string
	Logger       *zap.Logger
}

// Router registers routes and middleware.
func Router(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger), middleware.Logger(deps.Logger))

	r.POST("/branding", deps.Strategy.Branding)
	r.POST("/website", deps.Strategy.Website)
	r.POST("/social", deps.Strategy.Social)
	r.POST("/copywriting", deps.Strategy.Copywriting)

	api := r.Group("/api")
	{
		api.POST("/intake", deps.Webhook.Intake)
		api.POST("/project/status", deps.Webhook.ProjectStatus)
		api.POST("/contact", deps.Webhook.Contact)
	}

	r.POST("/slack/events", deps.Slack.Events)
	r.POST("/gchat/events", deps.GChat.Events)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "running",
			"service": "MWD Agent",
			"version": serviceVersion,
			"config":  deps.ConfigStatus,
			"endpoints": gin.H{
				"strategy": []string{
					"POST /branding",
					"POST /website",
					"POST /social",
					"POST /copywriting",
				},
				"webhooks": []string{
					"POST /api/intake",
					"POST /api/project/status",
					"POST /api/contact",
				},
				"chat": []string{
					"POST /slack/events",
					"POST /gchat/events",
				},
			},
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}
