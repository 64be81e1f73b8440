package ginserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	listingapp "travelnest/internal/app/handlers/listings"
)

const maxListingImageSizeBytes int64 = 10 * 1024 * 1024

type ManagerHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	UploadImage(c *gin.Context)
}

// ManagerHandler exposes listing management to managers and admins. Admins
// may edit any listing; managers only their own.
type ManagerHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type listingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	NightlyRate int64  `json:"nightly_rate"`
	Currency    string `json:"currency"`
	Location    string `json:"location"`
	Country     string `json:"country"`
}

func (r listingRequest) payload() listingapp.ListingPayload {
	return listingapp.ListingPayload{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		ImageURL:    strings.TrimSpace(r.ImageURL),
		NightlyRate: r.NightlyRate,
		Currency:    r.Currency,
		Location:    strings.TrimSpace(r.Location),
		Country:     strings.TrimSpace(r.Country),
	}
}

func (h ManagerHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := listingapp.CreateListingCommand{Actor: actor, Payload: req.payload()}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "create listing", err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/listings/%s", result.ID))
	c.JSON(http.StatusCreated, result)
}

func (h ManagerHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := listingapp.UpdateListingCommand{
		Actor:     actor,
		ListingID: c.Param("id"),
		Payload:   req.payload(),
	}
	result, err := commands.Dispatch[listingapp.UpdateListingCommand, *dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "update listing", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ManagerHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	cmd := listingapp.DeleteListingCommand{Actor: actor, ListingID: c.Param("id")}
	if _, err := commands.Dispatch[listingapp.DeleteListingCommand, *struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, "delete listing", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ManagerHandler) UploadImage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	listingID := strings.TrimSpace(c.Param("id"))
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxListingImageSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file too large (max %d MB)", maxListingImageSizeBytes/1024/1024)})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxListingImageSizeBytes+1))
	if err != nil {
		respondError(c, h.Logger, "read image", err)
		return
	}
	if err := checkImage(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contentType := http.DetectContentType(data)
	cmd := listingapp.UploadListingImageCommand{
		Actor:       actor,
		ListingID:   listingID,
		ObjectKey:   imageObjectKey(listingID, fileHeader.Filename, contentType),
		ContentType: contentType,
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}
	result, err := commands.Dispatch[listingapp.UploadListingImageCommand, *dto.ListingImageUploadResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "upload listing image", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ManagerHandler) actor(c *gin.Context) (listingapp.Actor, bool) {
	p, ok := requireRole(c, roleManager, roleAdmin)
	if !ok {
		return listingapp.Actor{}, false
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return listingapp.Actor{}, false
	}
	return listingapp.Actor{ID: p.ID, IsAdmin: p.IsAdmin()}, true
}

var _ ManagerHTTP = ManagerHandler{}

func checkImage(data []byte) error {
	if len(data) == 0 {
		return errors.New("file is empty")
	}
	if int64(len(data)) > maxListingImageSizeBytes {
		return fmt.Errorf("file too large (max %d MB)", maxListingImageSizeBytes/1024/1024)
	}
	if ct := http.DetectContentType(data); extensionFor(ct) == "" {
		return fmt.Errorf("unsupported content type: %s", ct)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func imageObjectKey(listingID, filename, contentType string) string {
	ext := extensionFor(contentType)
	if ext == "" {
		ext = strings.ToLower(path.Ext(filename))
	}
	return fmt.Sprintf("listings/%s/%s%s", pathToken(listingID), uuid.NewString(), ext)
}

func pathToken(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "listing"
	}
	return b.String()
}
