package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelnest/internal/domain/shared/events"
	"travelnest/internal/domain/shared/money"
)

var (
	ErrIDRequired      = errors.New("listings: id is required")
	ErrOwnerRequired   = errors.New("listings: owner is required")
	ErrTitleRequired   = errors.New("listings: title is required")
	ErrNightlyRate     = errors.New("listings: nightly rate must be positive")
	ErrLocationMissing = errors.New("listings: location and country are required")
	ErrNotFound        = errors.New("listings: not found")
)

// DefaultImageURL is shown for listings that never had a photo uploaded.
const DefaultImageURL = "https://images.unsplash.com/photo-1657002865844-c4127d542c41?w=500&auto=format&fit=crop&q=60"

type ListingID string
type OwnerID string

type Listing struct {
	ID          ListingID
	Owner       OwnerID
	Title       string
	Description string
	ImageURL    string
	NightlyRate money.Money
	Location    string
	Country     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type Details struct {
	Title       string
	Description string
	ImageURL    string
	NightlyRate money.Money
	Location    string
	Country     string
}

func (d Details) normalized() (Details, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	d.Location = strings.TrimSpace(d.Location)
	d.Country = strings.TrimSpace(d.Country)
	if d.Title == "" {
		return Details{}, ErrTitleRequired
	}
	if d.NightlyRate.Amount <= 0 {
		return Details{}, ErrNightlyRate
	}
	if d.Location == "" || d.Country == "" {
		return Details{}, ErrLocationMissing
	}
	if d.NightlyRate.Currency == "" {
		d.NightlyRate.Currency = money.DefaultCurrency
	}
	if d.ImageURL == "" {
		d.ImageURL = DefaultImageURL
	}
	return d, nil
}

type CreateListingParams struct {
	ID      ListingID
	Owner   OwnerID
	Details Details
	Now     time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	details, err := params.Details.normalized()
	if err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	l := &Listing{
		ID:        params.ID,
		Owner:     params.Owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.apply(details)
	l.Record(ListingCreatedEvent{ListingID: l.ID, OwnerID: l.Owner, At: now})
	return l, nil
}

func (l *Listing) Update(details Details, now time.Time) error {
	normalized, err := details.normalized()
	if err != nil {
		return err
	}
	if strings.TrimSpace(details.ImageURL) == "" {
		normalized.ImageURL = l.ImageURL
	}
	l.apply(normalized)
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

func (l *Listing) SetImage(url string, now time.Time) {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultImageURL
	}
	l.ImageURL = url
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, At: l.UpdatedAt})
}

// MarkDeleted records the removal; the repository drops the document.
func (l *Listing) MarkDeleted(now time.Time) {
	l.Record(ListingDeletedEvent{ListingID: l.ID, OwnerID: l.Owner, At: now.UTC()})
}

// ManageableBy reports whether the user may edit or delete the listing.
func (l *Listing) ManageableBy(userID string, isAdmin bool) bool {
	return isAdmin || (userID != "" && string(l.Owner) == userID)
}

func (l *Listing) apply(d Details) {
	l.Title = d.Title
	l.Description = d.Description
	l.ImageURL = d.ImageURL
	l.NightlyRate = d.NightlyRate
	l.Location = d.Location
	l.Country = d.Country
}
