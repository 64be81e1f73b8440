package listings

import (
	"context"

	"travelnest/internal/app/dto"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/queries"
	"travelnest/internal/app/uow"
	domainlistings "travelnest/internal/domain/listings"
)

const (
	listCatalogKey = "listings.catalog"
	getListingKey  = "listings.get"
)

// ListCatalogQuery describes request filters.
type ListCatalogQuery struct {
	OwnerID  string
	Country  string
	Query    string
	PriceMin int64 `validate:"gte=0"`
	PriceMax int64 `validate:"gte=0"`
	Sort     string
	Limit    int `validate:"gte=0,lte=100"`
	Offset   int `validate:"gte=0"`
}

func (q ListCatalogQuery) Key() string { return listCatalogKey }

type ListCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListCatalogHandler) Handle(ctx context.Context, q ListCatalogQuery) (dto.ListingCatalog, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainlistings.SearchParams{
		Owner:    domainlistings.OwnerID(q.OwnerID),
		Country:  q.Country,
		Query:    q.Query,
		PriceMin: q.PriceMin,
		PriceMax: q.PriceMax,
		Sort:     domainlistings.CatalogSort(q.Sort),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	result, err := unit.Listings().Search(execCtx, params.Normalized())
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	return dto.MapCatalog(result, params), nil
}

type GetListingQuery struct {
	ListingID string `validate:"required"`
}

func (q GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.ListingDetail, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.ListingDetail{}, err
	}
	return dto.MapListingDetail(listing), nil
}

var _ queries.Handler[ListCatalogQuery, dto.ListingCatalog] = (*ListCatalogHandler)(nil)
var _ queries.Handler[GetListingQuery, dto.ListingDetail] = (*GetListingHandler)(nil)
