package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	"travelnest/internal/app/outbox"
	"travelnest/internal/app/policies"
	domainlistings "travelnest/internal/domain/listings"
)

const uploadListingImageKey = "manager.listings.image.upload"

type UploadListingImageCommand struct {
	Actor       Actor
	ListingID   string `validate:"required"`
	ObjectKey   string `validate:"required"`
	ContentType string
	Size        int64 `validate:"gte=-1"`
	Reader      io.Reader
}

func (c UploadListingImageCommand) Key() string { return uploadListingImageKey }

// UploadListingImageHandler replaces the listing image. The previous object is
// removed from storage once the listing has been saved.
type UploadListingImageHandler struct {
	Images  policies.ImageStorage
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h *UploadListingImageHandler) Handle(ctx context.Context, cmd UploadListingImageCommand) (*dto.ListingImageUploadResult, error) {
	if h.Images == nil {
		return nil, errors.New("image storage unavailable")
	}
	if cmd.Reader == nil {
		return nil, errors.New("image reader is required")
	}
	if strings.TrimSpace(cmd.ObjectKey) == "" {
		return nil, errors.New("object key is required")
	}

	unit, listing, err := loadManagedListing(ctx, cmd.Actor, cmd.ListingID)
	if err != nil {
		return nil, err
	}

	publicURL, err := h.Images.Put(ctx, cmd.ObjectKey, cmd.Reader, cmd.Size, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	previous := listing.ImageURL
	listing.SetImage(publicURL, now)
	if err := unit.Listings().Save(ctx, listing); err != nil {
		_ = h.Images.Remove(ctx, publicURL)
		return nil, err
	}
	if err := recordListingEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}
	if previous != "" && previous != domainlistings.DefaultImageURL && previous != publicURL {
		if err := h.Images.Remove(ctx, previous); err != nil && h.Logger != nil {
			h.Logger.Warn("previous listing image not removed", "listing_id", listing.ID, "url", previous, "error", err)
		}
	}

	if h.Logger != nil {
		h.Logger.Info("listing image uploaded", "listing_id", listing.ID, "actor_id", cmd.Actor.ID, "object_key", cmd.ObjectKey)
	}

	return &dto.ListingImageUploadResult{
		Listing: dto.MapListingDetail(listing),
		URL:     publicURL,
	}, nil
}

var _ commands.Handler[UploadListingImageCommand, *dto.ListingImageUploadResult] = (*UploadListingImageHandler)(nil)
