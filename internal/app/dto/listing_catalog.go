package dto

import (
	"time"

	domainlistings "travelnest/internal/domain/listings"
)

// ListingCatalog is a paginated collection of listings.
type ListingCatalog struct {
	Items []ListingCard   `json:"items"`
	Meta  CatalogMetadata `json:"meta"`
}

// ListingCard is a lightweight representation for catalog cards.
type ListingCard struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Country     string   `json:"country"`
	ImageURL    string   `json:"image_url"`
	NightlyRate MoneyDTO `json:"nightly_rate"`
}

// CatalogMetadata describes pagination.
type CatalogMetadata struct {
	Total  int    `json:"total"`
	Count  int    `json:"count"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   string `json:"sort"`
}

// ListingDetail is the full listing view.
type ListingDetail struct {
	ListingCard
	OwnerID     string    `json:"owner_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListingImageUploadResult struct {
	Listing ListingDetail `json:"listing"`
	URL     string        `json:"url"`
}

// MapCatalog builds a DTO collection based on a search result.
func MapCatalog(result domainlistings.SearchResult, params domainlistings.SearchParams) ListingCatalog {
	normalized := params.Normalized()
	items := make([]ListingCard, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, MapListingCard(listing))
	}
	return ListingCatalog{
		Items: items,
		Meta: CatalogMetadata{
			Total:  result.Total,
			Count:  len(items),
			Limit:  normalized.Limit,
			Offset: normalized.Offset,
			Sort:   string(normalized.Sort),
		},
	}
}

func MapListingCard(listing *domainlistings.Listing) ListingCard {
	if listing == nil {
		return ListingCard{}
	}
	return ListingCard{
		ID:          string(listing.ID),
		Title:       listing.Title,
		Location:    listing.Location,
		Country:     listing.Country,
		ImageURL:    listing.ImageURL,
		NightlyRate: MapMoney(listing.NightlyRate),
	}
}

func MapListingDetail(listing *domainlistings.Listing) ListingDetail {
	if listing == nil {
		return ListingDetail{}
	}
	return ListingDetail{
		ListingCard: MapListingCard(listing),
		OwnerID:     string(listing.Owner),
		Description: listing.Description,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}
