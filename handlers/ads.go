package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Manushivuz/IISPPR-MainSite/internal/ads"
	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
	"github.com/Manushivuz/IISPPR-MainSite/internal/pageads"
	"github.com/Manushivuz/IISPPR-MainSite/internal/upload"
)

// idsRequest is the body of the batch delete routes.
type idsRequest struct {
	IDs []string `json:"ids"`
}

// protect prepends the guard chain to h.
func protect(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, guard...), h)
}

// AdsHandler serves /ads.
type AdsHandler struct {
	ads     *ads.Service
	pageAds *pageads.Service
	intake  *upload.Intake
}

func NewAdsHandler(a *ads.Service, p *pageads.Service, intake *upload.Intake) *AdsHandler {
	return &AdsHandler{ads: a, pageAds: p, intake: intake}
}

// Register mounts the routes; guard runs in front of every mutating one.
func (h *AdsHandler) Register(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	a := rg.Group("/ads")
	a.GET("", h.List)
	a.GET("/:id", h.Get)
	a.POST("", protect(guard, h.Create)...)
	a.PUT("/:id", protect(guard, h.Update)...)
	a.DELETE("", protect(guard, h.Delete)...)
	a.DELETE("/unassign", protect(guard, unassign(h.pageAds))...)
}

func (h *AdsHandler) List(c *gin.Context) {
	list, err := h.ads.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdsHandler) Get(c *gin.Context) {
	ad, err := h.ads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *AdsHandler) Create(c *gin.Context) {
	f, err := h.intake.FromForm(c, "image")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	ad, err := h.ads.Create(c.Request.Context(), ads.CreateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		File:        f,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, ad)
}

func (h *AdsHandler) Update(c *gin.Context) {
	f, err := h.intake.FromForm(c, "image")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	ad, err := h.ads.Update(c.Request.Context(), c.Param("id"), ads.UpdateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		File:        f,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *AdsHandler) Delete(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Array of ad IDs is required."))
		return
	}
	n, err := h.ads.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Successfully deleted %d ad(s).", n)})
}

// unassign is mounted both as /ads/unassign and /pageads/unassign.
func unassign(svc *pageads.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			AdID     string `json:"adId"`
			Page     string `json:"page"`
			Position string `json:"position"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("adId, page, and position are required."))
			return
		}
		if err := svc.Unassign(c.Request.Context(), req.AdID, req.Page, req.Position); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Ad unassigned successfully."})
	}
}
