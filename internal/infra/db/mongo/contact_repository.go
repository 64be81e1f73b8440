package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincontact "travelnest/internal/domain/contact"
)

// ContactRepository stores contact form submissions. Messages are last-write-wins.
type ContactRepository struct {
	col *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	col := db.Collection("app_contact_messages")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}})
	return &ContactRepository{col: col}
}

func (r *ContactRepository) ByID(ctx context.Context, id domaincontact.MessageID) (*domaincontact.Message, error) {
	var doc contactDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domaincontact.ErrNotFound)
	}
	return doc.toMessage(), nil
}

func (r *ContactRepository) Save(ctx context.Context, msg *domaincontact.Message) error {
	doc := newContactDocument(msg)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *ContactRepository) List(ctx context.Context, params domaincontact.ListParams) ([]*domaincontact.Message, int, error) {
	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if params.Offset > 0 {
		opts.SetSkip(int64(params.Offset))
	}
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	msgs := make([]*domaincontact.Message, 0)
	for cur.Next(ctx) {
		var doc contactDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		msgs = append(msgs, doc.toMessage())
	}
	return msgs, int(total), cur.Err()
}

type contactDocument struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	Email     string `bson:"email"`
	Subject   string `bson:"subject"`
	Body      string `bson:"body"`
	Status    string `bson:"status"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func newContactDocument(m *domaincontact.Message) contactDocument {
	return contactDocument{
		ID:        string(m.ID),
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Body:      m.Body,
		Status:    string(m.Status),
		CreatedAt: timeToMillis(m.CreatedAt),
		UpdatedAt: timeToMillis(m.UpdatedAt),
	}
}

func (d contactDocument) toMessage() *domaincontact.Message {
	return &domaincontact.Message{
		ID:        domaincontact.MessageID(d.ID),
		Name:      d.Name,
		Email:     d.Email,
		Subject:   d.Subject,
		Body:      d.Body,
		Status:    domaincontact.Status(d.Status),
		CreatedAt: millisToTime(d.CreatedAt),
		UpdatedAt: millisToTime(d.UpdatedAt),
	}
}

var _ domaincontact.Repository = (*ContactRepository)(nil)
