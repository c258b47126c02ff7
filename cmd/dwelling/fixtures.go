package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	authsvc "dwelling/internal/app/services/auth"
	domainauth "dwelling/internal/domain/auth"
	domainlistings "dwelling/internal/domain/listings"
	"dwelling/internal/domain/shared/money"
	domainuser "dwelling/internal/domain/user"
)

type fixtureFile struct {
	Users    []userFixture    `json:"users"`
	Sessions []sessionFixture `json:"sessions"`
	Listings []listingFixture `json:"listings"`
}

type userFixture struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// sessionFixture without a token gets a freshly issued one.
type sessionFixture struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type listingFixture struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ImageSrc      string `json:"image_src"`
	Category      string `json:"category"`
	RoomCount     int    `json:"room_count"`
	BathroomCount int    `json:"bathroom_count"`
	GuestCount    int    `json:"guest_count"`
	LocationValue string `json:"location_value"`
	Price         int64  `json:"price"`
	Currency      string `json:"currency"`
}

type fixtureTargets struct {
	Users    domainuser.Repository
	Listings domainlistings.Repository
	Auth     *authsvc.Service
}

// loadFixtures seeds users, sessions and listings. Invalid entries are logged
// and skipped; only an unreadable or undecodable file is an error.
func loadFixtures(ctx context.Context, path string, to fixtureTargets, currency string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		logger.Warn("fixtures file empty", "path", path)
		return nil
	}

	var file fixtureFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range file.Users {
		u, err := domainuser.NewUser(domainuser.CreateParams{
			ID:    domainuser.ID(fx.ID),
			Name:  fx.Name,
			Email: fx.Email,
			Image: fx.Image,
		})
		if err != nil {
			logger.Error("user fixture invalid", "user_id", fx.ID, "error", err)
			continue
		}
		if err := to.Users.Save(ctx, u); err != nil {
			logger.Error("cannot store fixture user", "user_id", fx.ID, "error", err)
			continue
		}
	}

	for _, fx := range file.Sessions {
		userID := domainuser.ID(fx.UserID)
		if fx.Token == "" {
			token, err := to.Auth.IssueSession(ctx, userID)
			if err != nil {
				logger.Error("cannot issue fixture session", "user_id", fx.UserID, "error", err)
				continue
			}
			logger.Info("fixture session issued", "user_id", fx.UserID, "token", token)
			continue
		}
		if err := to.Auth.SaveSession(ctx, domainauth.Token(fx.Token), userID); err != nil {
			logger.Error("cannot store fixture session", "user_id", fx.UserID, "error", err)
		}
	}

	for _, fx := range file.Listings {
		cur := fx.Currency
		if cur == "" {
			cur = currency
		}
		price, err := money.Positive(fx.Price, cur)
		if err != nil {
			logger.Error("listing fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		listing, err := domainlistings.NewListing(domainlistings.CreateParams{
			ID:            domainlistings.ListingID(fx.ID),
			OwnerID:       domainuser.ID(fx.OwnerID),
			Title:         fx.Title,
			Description:   fx.Description,
			ImageSrc:      fx.ImageSrc,
			Category:      fx.Category,
			RoomCount:     fx.RoomCount,
			BathroomCount: fx.BathroomCount,
			GuestCount:    fx.GuestCount,
			LocationValue: fx.LocationValue,
			Price:         price,
		})
		if err != nil {
			logger.Error("listing fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := to.Listings.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}
