package mongo

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "travelnest/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	col := db.Collection("agg_listing")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "nightly_rate.amount", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return &ListingRepository{col: col}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainlistings.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	doc.Version = l.Version + 1
	if err := saveVersioned(ctx, r.col, doc.ID, l.Version, doc); err != nil {
		return err
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := searchFilter(opts)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	findOpts := options.Find().
		SetSort(searchSort(opts.Sort)).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	defer cur.Close(ctx)

	items := make([]*domainlistings.Listing, 0, opts.Limit)
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return domainlistings.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cur.Err(); err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

func searchFilter(p domainlistings.SearchParams) bson.M {
	filter := bson.M{}
	if p.Owner != "" {
		filter["owner_id"] = string(p.Owner)
	}
	if p.Country != "" {
		filter["country"] = bson.M{"$regex": "^" + regexp.QuoteMeta(p.Country) + "$", "$options": "i"}
	}
	price := bson.M{}
	if p.PriceMin > 0 {
		price["$gte"] = p.PriceMin
	}
	if p.PriceMax > 0 {
		price["$lte"] = p.PriceMax
	}
	if len(price) > 0 {
		filter["nightly_rate.amount"] = price
	}
	if p.Query != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(p.Query), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"location": pattern},
			bson.M{"country": pattern},
		}
	}
	return filter
}

func searchSort(order domainlistings.CatalogSort) bson.D {
	switch order {
	case domainlistings.SortByPriceAsc:
		return bson.D{{Key: "nightly_rate.amount", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	case domainlistings.SortByPriceDesc:
		return bson.D{{Key: "nightly_rate.amount", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	}
}

type listingDocument struct {
	ID          string        `bson:"_id"`
	OwnerID     string        `bson:"owner_id"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	ImageURL    string        `bson:"image_url"`
	NightlyRate moneyDocument `bson:"nightly_rate"`
	Location    string        `bson:"location"`
	Country     string        `bson:"country"`
	CreatedAt   int64         `bson:"created_at"`
	UpdatedAt   int64         `bson:"updated_at"`
	Version     int64         `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:          string(l.ID),
		OwnerID:     string(l.Owner),
		Title:       l.Title,
		Description: l.Description,
		ImageURL:    l.ImageURL,
		NightlyRate: newMoneyDocument(l.NightlyRate),
		Location:    l.Location,
		Country:     l.Country,
		CreatedAt:   timeToMillis(l.CreatedAt),
		UpdatedAt:   timeToMillis(l.UpdatedAt),
		Version:     l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Owner:       domainlistings.OwnerID(d.OwnerID),
		Title:       d.Title,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		NightlyRate: d.NightlyRate.toMoney(),
		Location:    d.Location,
		Country:     d.Country,
		CreatedAt:   millisToTime(d.CreatedAt),
		UpdatedAt:   millisToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
