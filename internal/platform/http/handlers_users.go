package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acolhimento-gf/visitantes-api/internal/business/accounts"
	"github.com/acolhimento-gf/visitantes-api/internal/session"
)

func (r *Router) listUsers(c *gin.Context) {
	users, err := r.accounts.ListUsers(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}

func (r *Router) getUser(c *gin.Context) {
	u, err := r.accounts.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (r *Router) createUser(c *gin.Context) {
	var in accounts.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	u, err := r.accounts.CreateUser(c.Request.Context(), in)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (r *Router) updateUser(c *gin.Context) {
	var in accounts.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	u, err := r.accounts.UpdateUser(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (r *Router) deleteUser(c *gin.Context) {
	actor := session.From(c.Request.Context())
	if err := r.accounts.DeleteUser(c.Request.Context(), actor.UserID, c.Param("id")); err != nil {
		r.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
