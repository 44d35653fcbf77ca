package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (r *Router) startBackfill(c *gin.Context) {
	runID, err := r.visitors.StartBackfill(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"runId":   runID,
		"message": "Address backfill started. Check status with GET /api/enderecos/runs/" + runID,
	})
}

func (r *Router) listRuns(c *gin.Context) {
	runs, err := r.visitors.ListRuns(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": runs})
}

func (r *Router) getRun(c *gin.Context) {
	run, err := r.visitors.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (r *Router) cancelRun(c *gin.Context) {
	if err := r.visitors.CancelRun(c.Param("id")); err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runId": c.Param("id"), "status": "cancelling"})
}
