package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acolhimento-gf/visitantes-api/internal/session"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *Router) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	res, err := r.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (r *Router) me(c *gin.Context) {
	s := session.From(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"id":           s.UserID,
		"nome":         s.Name,
		"role":         s.Role,
		"landing":      s.Role.Landing(),
		"capabilities": s.Role.Capabilities(),
		"expires_at":   s.ExpiresAt,
	})
}
