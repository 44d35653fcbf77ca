package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acolhimento-gf/visitantes-api/internal/business/visitors"
	"github.com/acolhimento-gf/visitantes-api/internal/repository"
)

func (r *Router) listVisitors(c *gin.Context) {
	items, err := r.visitors.List(c.Request.Context(), repository.VisitorQuery{
		Status: c.Query("status"),
		GF:     c.Query("gf"),
	})
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (r *Router) getVisitor(c *gin.Context) {
	v, err := r.visitors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (r *Router) registerVisitor(c *gin.Context) {
	var in visitors.VisitorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	v, err := r.visitors.Register(c.Request.Context(), in)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (r *Router) updateVisitor(c *gin.Context) {
	var in visitors.VisitorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	v, err := r.visitors.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type statusReq struct {
	Status string `json:"status"`
}

func (r *Router) updateVisitorStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	v, err := r.visitors.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (r *Router) deleteVisitor(c *gin.Context) {
	if err := r.visitors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		r.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) exportVisitors(c *gin.Context) {
	filename := fmt.Sprintf("visitantes-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := r.visitors.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		r.log.Error("export visitors", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
}

func (r *Router) lookupCEP(c *gin.Context) {
	addr, err := r.visitors.LookupCEP(c.Request.Context(), c.Param("cep"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, addr)
}
