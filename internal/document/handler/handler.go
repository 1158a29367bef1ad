package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
	"github.com/Manushivuz/IISPPR-MainSite/internal/document/service"
	"github.com/Manushivuz/IISPPR-MainSite/internal/upload"
)

// RegisterDocumentRoutes mounts the article/report routes on r. guard runs in
// front of every mutating route.
func RegisterDocumentRoutes(r gin.IRouter, svc service.Service, intake *upload.Intake, guard ...gin.HandlerFunc) {
	with := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), h)
	}

	r.GET("/documents", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), c.Query("type"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "documents": list})
	})

	r.GET("/documents/:id", func(c *gin.Context) {
		d, err := svc.Get(c.Request.Context(), c.Query("type"), c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "document": d})
	})

	r.POST("/documents", with(func(c *gin.Context) {
		f, err := intake.FromForm(c, "pdf", "application/pdf")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		d, err := svc.Create(c.Request.Context(), service.CreateInput{
			Type:        c.PostForm("type"),
			Title:       c.PostForm("title"),
			AuthorNames: c.PostForm("author_names"),
			Date:        c.PostForm("date"),
			File:        f,
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "document": d})
	})...)

	r.DELETE("/documents", with(func(c *gin.Context) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Array of IDs is required."})
			return
		}
		res, err := svc.DeleteMany(c.Request.Context(), c.Query("type"), req.IDs)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Deletion process completed",
			"deleted": res.Deleted,
			"failed":  res.Failed,
		})
	})...)

	r.DELETE("/documents/:id", with(func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Query("type"), c.Param("id")); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document deleted successfully"})
	})...)
}
