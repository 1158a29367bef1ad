package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
	"github.com/Manushivuz/IISPPR-MainSite/internal/pageads"
)

// PageAdsHandler serves the page-ad registry under /pageads.
type PageAdsHandler struct {
	svc *pageads.Service
}

func NewPageAdsHandler(s *pageads.Service) *PageAdsHandler {
	return &PageAdsHandler{svc: s}
}

func (h *PageAdsHandler) Register(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	p := rg.Group("/pageads")
	p.GET("", h.ForPage)
	p.GET("/getall", h.All)
	p.POST("", protect(guard, h.Assign)...)
	p.PATCH("", protect(guard, h.UpdatePosition)...)
	p.DELETE("/unassign", protect(guard, unassign(h.svc))...)
	p.DELETE("/:pageName", protect(guard, h.DeletePage)...)
}

// ForPage answers GET /pageads?page=&position=. Nothing to show is a 404.
func (h *PageAdsHandler) ForPage(c *gin.Context) {
	res, err := h.svc.AdsForPage(c.Request.Context(), c.Query("page"), c.Query("position"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PageAdsHandler) All(c *gin.Context) {
	list, err := h.svc.All(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": len(list), "data": list})
}

func (h *PageAdsHandler) Assign(c *gin.Context) {
	var req struct {
		AdID     string   `json:"adId"`
		Pages    []string `json:"pages"`
		Position string   `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Provide adId, a non-empty array of pages, and a position."))
		return
	}
	slots, err := h.svc.Assign(c.Request.Context(), req.AdID, req.Pages, req.Position)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": pageads.AssignMessage(slots)})
}

func (h *PageAdsHandler) UpdatePosition(c *gin.Context) {
	var req struct {
		Page     string `json:"page"`
		Position string `json:"position"`
		From     string `json:"from"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Provide valid 'page' and 'position' (top or bottom)."))
		return
	}
	pa, err := h.svc.UpdatePosition(c.Request.Context(), req.Page, req.Position, req.From)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Position for page '%s' updated to '%s'.", pa.Page, pa.Position),
		"data":    pa,
	})
}

func (h *PageAdsHandler) DeletePage(c *gin.Context) {
	n, err := h.svc.DeletePage(c.Request.Context(), c.Param("pageName"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Removed %d assignment(s).", n)})
}
