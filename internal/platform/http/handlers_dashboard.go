package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acolhimento-gf/visitantes-api/internal/business/stats"
)

func (r *Router) dashboard(c *gin.Context) {
	bundle, err := r.visitors.Stats(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (r *Router) getSnapshot(c *gin.Context) {
	bundle, err := r.visitors.Snapshot(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (r *Router) saveSnapshot(c *gin.Context) {
	bundle, err := r.visitors.SaveSnapshot(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

// aggregateRecords computes a bundle over a JSON array posted by the caller.
func (r *Router) aggregateRecords(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 10<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	records, err := stats.DecodeRecords(raw)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r.visitors.AggregateRecords(records))
}
