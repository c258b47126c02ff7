package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"dwelling/internal/app/commands"
	"dwelling/internal/app/handlers/support"
	"dwelling/internal/app/middleware"
	"dwelling/internal/app/outbox"
	"dwelling/internal/app/policies"
	"dwelling/internal/app/uow"
	domainlistings "dwelling/internal/domain/listings"
	domainuser "dwelling/internal/domain/user"
)

const uploadListingImageKey = "listings.image.upload"

var (
	ErrImageStoreUnavailable = errors.New("listings: image store unavailable")
	ErrImageMissing          = errors.New("listings: image body is required")
)

type UploadListingImageCommand struct {
	RequesterID string
	ListingID   string `validate:"required"`
	FileName    string
	ContentType string `validate:"omitempty,startswith=image/"`
	Size        int64  `validate:"gte=0"`
	Body        io.Reader
}

func (c UploadListingImageCommand) Key() string { return uploadListingImageKey }

func (c UploadListingImageCommand) Requester() string { return c.RequesterID }

type UploadListingImageResult struct {
	ListingID string `json:"listing_id"`
	ImageSrc  string `json:"image_src"`
}

type UploadListingImageHandler struct {
	Images  policies.ImageStore
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Now     func() time.Time
}

// Handle runs inside the unit opened by the transaction middleware.
func (h *UploadListingImageHandler) Handle(ctx context.Context, cmd UploadListingImageCommand) (*UploadListingImageResult, error) {
	if h.Images == nil {
		return nil, ErrImageStoreUnavailable
	}
	if cmd.Body == nil {
		return nil, ErrImageMissing
	}
	unit, ok := uow.From(ctx)
	if !ok {
		return nil, uow.ErrNoUnit
	}

	listing, err := support.LoadListing(ctx, unit, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	requester := domainuser.ID(cmd.RequesterID)
	if !listing.OwnedBy(requester) {
		return nil, domainlistings.ErrNotOwner
	}

	key := objectKey(string(listing.ID), cmd.FileName)
	url, err := h.Images.Upload(ctx, key, cmd.Body, cmd.Size, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	if err := listing.ReplaceImage(requester, url, h.now()); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, support.Persistence(err)
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.Drain()); err != nil {
		return nil, support.Persistence(err)
	}
	if h.Logger != nil {
		h.Logger.Info("listing image replaced", "listing_id", listing.ID, "url", url)
	}
	return &UploadListingImageResult{ListingID: string(listing.ID), ImageSrc: url}, nil
}

func (h *UploadListingImageHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func objectKey(listingID, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if len(ext) > 8 {
		ext = ""
	}
	return path.Join("listings", listingID, uuid.NewString()+ext)
}

var _ commands.Handler[UploadListingImageCommand, *UploadListingImageResult] = (*UploadListingImageHandler)(nil)
var _ middleware.Authenticated = UploadListingImageCommand{}
