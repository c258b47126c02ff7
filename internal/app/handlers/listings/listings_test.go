package listings

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwelling/internal/app/uow"
	domainlistings "dwelling/internal/domain/listings"
	domainpricing "dwelling/internal/domain/pricing"
	domainreservation "dwelling/internal/domain/reservation"
	"dwelling/internal/domain/shared/daterange"
	"dwelling/internal/domain/shared/money"
	domainuser "dwelling/internal/domain/user"
	"dwelling/internal/infra/storage/memory"
)

type stores struct {
	listings     *memory.ListingRepository
	reservations *memory.ReservationRepository
	users        *memory.UserRepository
	factory      memory.Factory
}

func seed(t *testing.T) stores {
	t.Helper()
	ctx := context.Background()
	s := stores{
		listings:     memory.NewListingRepository(),
		reservations: memory.NewReservationRepository(),
		users:        memory.NewUserRepository(),
	}
	s.factory = memory.Factory{ListingsRepo: s.listings, ReservationsRepo: s.reservations, UsersRepo: s.users}

	owner, err := domainuser.NewUser(domainuser.CreateParams{ID: "owner", Name: "Anna", Image: "https://img/anna.png"})
	require.NoError(t, err)
	require.NoError(t, s.users.Save(ctx, owner))

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID: "l1", OwnerID: "owner", Title: "Loft", Category: "Modern", Price: money.Must(120, "RUB"),
	})
	require.NoError(t, err)
	require.NoError(t, s.listings.Save(ctx, listing))

	res, err := domainreservation.New(domainreservation.CreateParams{
		ID: "r1", ListingID: "l1", UserID: "guest",
		Range:      daterange.Of(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)),
		TotalPrice: money.Must(240, "RUB"),
	})
	require.NoError(t, err)
	require.NoError(t, s.reservations.Create(ctx, res))
	return s
}

func TestGetListingIncludesOwnerAndDisabledDates(t *testing.T) {
	s := seed(t)
	h := &GetListingHandler{UoWFactory: s.factory}

	detail, err := h.Handle(context.Background(), GetListingQuery{ListingID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, "Loft", detail.Title)
	assert.Equal(t, "Anna", detail.Owner.Name)
	assert.Equal(t, int64(120), detail.Price.Amount)
	assert.Equal(t, []string{"2024-01-10", "2024-01-11"}, detail.DisabledDates)

	_, err = h.Handle(context.Background(), GetListingQuery{ListingID: "nope"})
	assert.ErrorIs(t, err, domainreservation.ErrListingNotFound)
}

func TestQuoteStay(t *testing.T) {
	s := seed(t)
	h := &QuoteStayHandler{UoWFactory: s.factory, Pricing: domainpricing.NewCalculator()}
	start := time.Date(2024, 2, 1, 15, 0, 0, 0, time.UTC)

	q, err := h.Handle(context.Background(), QuoteStayQuery{ListingID: "l1", StartDate: start, EndDate: start.AddDate(0, 0, 3)})
	require.NoError(t, err)
	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, int64(360), q.Total.Amount)
	assert.Equal(t, "2024-02-01", q.StartDate)
	assert.True(t, q.Bookable)

	q, err = h.Handle(context.Background(), QuoteStayQuery{ListingID: "l1", StartDate: start, EndDate: start})
	require.NoError(t, err)
	assert.Equal(t, int64(120), q.Total.Amount)
	assert.False(t, q.Bookable)
}

type recordingImages struct {
	key  string
	body string
}

func (r *recordingImages) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	r.key, r.body = key, string(data)
	return "https://cdn.example/" + key, nil
}

func TestUploadListingImage(t *testing.T) {
	s := seed(t)
	images := &recordingImages{}
	box := memory.NewOutbox()
	h := &UploadListingImageHandler{Images: images, Outbox: box}

	unit, err := s.factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.Attach(context.Background(), unit)

	_, err = h.Handle(ctx, UploadListingImageCommand{RequesterID: "intruder", ListingID: "l1", FileName: "a.png", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, domainlistings.ErrNotOwner)
	assert.Empty(t, images.key)

	res, err := h.Handle(ctx, UploadListingImageCommand{
		RequesterID: "owner", ListingID: "l1", FileName: "Cover.PNG", ContentType: "image/png",
		Body: bytes.NewBufferString("png-bytes"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(images.key, "listings/l1/"))
	assert.True(t, strings.HasSuffix(images.key, ".png"))
	assert.Equal(t, "png-bytes", images.body)

	stored, err := s.listings.ByID(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, res.ImageSrc, stored.ImageSrc)
	assert.Equal(t, 1, box.Pending())
}

func TestUploadListingImageRequiresUnit(t *testing.T) {
	h := &UploadListingImageHandler{Images: &recordingImages{}}
	_, err := h.Handle(context.Background(), UploadListingImageCommand{ListingID: "l1", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, uow.ErrNoUnit)
}
