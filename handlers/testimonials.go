package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
	"github.com/Manushivuz/IISPPR-MainSite/internal/testimonials"
	"github.com/Manushivuz/IISPPR-MainSite/internal/upload"
)

type TestimonialsHandler struct {
	svc    *testimonials.Service
	intake *upload.Intake
}

func NewTestimonialsHandler(s *testimonials.Service, intake *upload.Intake) *TestimonialsHandler {
	return &TestimonialsHandler{svc: s, intake: intake}
}

func (h *TestimonialsHandler) Register(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	t := rg.Group("/testimonials")
	t.GET("", h.List)
	t.GET("/:id", h.Get)
	t.POST("", protect(guard, h.Create)...)
	t.PUT("/:id", protect(guard, h.Update)...)
	t.DELETE("", protect(guard, h.Delete)...)
}

func (h *TestimonialsHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TestimonialsHandler) Get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TestimonialsHandler) Create(c *gin.Context) {
	f, err := h.intake.FromForm(c, "image")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), testimonials.CreateInput{
		Text:   c.PostForm("text"),
		Author: c.PostForm("author"),
		File:   f,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// Update only touches the fields present in the form.
func (h *TestimonialsHandler) Update(c *gin.Context) {
	f, err := h.intake.FromForm(c, "image")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	in := testimonials.UpdateInput{File: f}
	if v, ok := c.GetPostForm("text"); ok {
		in.Text = &v
	}
	if v, ok := c.GetPostForm("author"); ok {
		in.Author = &v
	}
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TestimonialsHandler) Delete(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Array of testimonial IDs is required."))
		return
	}
	n, err := h.svc.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Successfully deleted %d testimonial(s).", n)})
}
