package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/content"
)

// ContentHandler serves FAQs and policy pages
type ContentHandler struct {
	contentService *content.Service
	log            *logrus.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *content.Service, log *logrus.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		log:            log,
	}
}

// GetFAQs handles GET /faqs
func (h *ContentHandler) GetFAQs(c *gin.Context) {
	faqs, err := h.contentService.ListFAQs(c.Request.Context(), false)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": faqs,
	})
}

// ListAllFAQs handles GET /admin/faqs
func (h *ContentHandler) ListAllFAQs(c *gin.Context) {
	faqs, err := h.contentService.ListFAQs(c.Request.Context(), true)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": faqs,
	})
}

// CreateFAQ handles POST /admin/faqs
func (h *ContentHandler) CreateFAQ(c *gin.Context) {
	h.saveFAQ(c, 0, http.StatusCreated)
}

// UpdateFAQ handles PUT /admin/faqs/:id
func (h *ContentHandler) UpdateFAQ(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	h.saveFAQ(c, id, http.StatusOK)
}

func (h *ContentHandler) saveFAQ(c *gin.Context, id uint, status int) {
	var req content.FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	faq, err := h.contentService.SaveFAQ(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(status, gin.H{
		"message": "FAQ saved",
		"data":    faq,
	})
}

// GetPage handles GET /pages/:kind
func (h *ContentHandler) GetPage(c *gin.Context) {
	doc, err := h.contentService.GetPolicy(c.Request.Context(), content.PolicyKind(c.Param("kind")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": doc,
	})
}

// UpdatePage handles PUT /admin/pages/:kind
func (h *ContentHandler) UpdatePage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req content.PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	doc, err := h.contentService.PutPolicy(c.Request.Context(), content.PolicyKind(c.Param("kind")), &req, actor.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Page updated",
		"data":    doc,
	})
}
