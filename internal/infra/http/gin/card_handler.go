package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"dwelling/internal/app/commands"
	cardsapp "dwelling/internal/app/handlers/cards"
)

type CardHTTP interface {
	Create(c *gin.Context)
}

type CardHandler struct {
	Commands commands.Bus
}

type createCardRequest struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (h CardHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable", "message": "cards unavailable"})
		return
	}
	var req createCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "request body is missing")
		return
	}
	result, err := commands.Dispatch[cardsapp.CreateCardCommand, *cardsapp.CreateCardResult](c.Request.Context(), h.Commands,
		cardsapp.CreateCardCommand{UID: req.UID, Name: req.Name, Address: req.Address})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": result.ID})
}

var _ CardHTTP = CardHandler{}
