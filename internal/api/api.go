package api

import (
	voiceCallHandler "clinic-server/internal/voicecall/handler"
	"net/http"

	"github.com/gin-gonic/gin"
)

type API struct {
	router           *gin.RouterGroup
	voiceCallHandler voiceCallHandler.Handler
}

func New(router *gin.RouterGroup, voiceCallHandler voiceCallHandler.Handler) API {
	return API{
		router:           router,
		voiceCallHandler: voiceCallHandler,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	apiGroup := a.router.Group("/api")
	{
		phoneGroup := apiGroup.Group("/phone")
		phoneGroup.POST("/answer", a.voiceCallHandler.HandleAnswerCall)
		phoneGroup.GET("/voice-agent", a.voiceCallHandler.HandleVoiceAgent)
		phoneGroup.GET("/recording", a.voiceCallHandler.HandleRecording)

		adminGroup := apiGroup.Group("/admin")
		adminGroup.GET("/prompt", a.voiceCallHandler.HandleGetCustomPrompt)
		adminGroup.PUT("/prompt", a.voiceCallHandler.HandleSetCustomPrompt)
		adminGroup.PUT("/oscar-tokens", a.voiceCallHandler.HandleSetServiceTokens)
		adminGroup.GET("/calls", a.voiceCallHandler.HandleListCalls)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
