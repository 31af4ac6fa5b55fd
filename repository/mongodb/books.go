package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Author    string             `bson:"author"`
	Category  string             `bson:"category"`
	Status    string             `bson:"status"`
	Notes     []noteDocument     `bson:"notes"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type noteDocument struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
}

func toNoteDocuments(notes []data.Note) []noteDocument {
	docs := make([]noteDocument, 0, len(notes))
	for _, n := range notes {
		docs = append(docs, noteDocument{ID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt})
	}
	return docs
}

func (d *bookDocument) book() *data.Book {
	book := &data.Book{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Author:    d.Author,
		Category:  d.Category,
		Status:    data.Status(d.Status),
		Notes:     make([]data.Note, 0, len(d.Notes)),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	for _, n := range d.Notes {
		book.Notes = append(book.Notes, data.Note{ID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt.UTC()})
	}
	return book
}

// InsertBook creates a new book document.
func (r *Repository) InsertBook(ctx context.Context, book *data.Book) error {
	now := r.now()
	doc := bookDocument{
		Title:     book.Title,
		Author:    book.Author,
		Category:  book.Category,
		Status:    string(book.Status),
		Notes:     toNoteDocuments(book.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	ctx, cancel := r.context(ctx)
	defer cancel()
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return mapError(err)
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	book.ID = oid.Hex()
	book.CreatedAt = now
	book.UpdatedAt = now
	if book.Notes == nil {
		book.Notes = []data.Note{}
	}
	return nil
}

// GetBook retrieves a book document by its ID.
func (r *Repository) GetBook(ctx context.Context, id string) (*data.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrRecordNotFound
	}
	ctx, cancel := r.context(ctx)
	defer cancel()
	var doc bookDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		return nil, mapError(err)
	}
	return doc.book(), nil
}

// GetAllBooks retrieves every book document matching filters in insertion order.
func (r *Repository) GetAllBooks(ctx context.Context, filters data.Filters) ([]*data.Book, error) {
	ctx, cancel := r.context(ctx)
	defer cancel()
	cursor, err := r.collection.Find(ctx, filterDocument(filters), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, mapError(err)
	}
	var docs []bookDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(err)
	}
	books := make([]*data.Book, 0, len(docs))
	for i := range docs {
		books = append(books, docs[i].book())
	}
	return books, nil
}

// UpdateBook sets the patched fields of a book document and returns the result.
func (r *Repository) UpdateBook(ctx context.Context, id string, patch data.BookPatch) (*data.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrRecordNotFound
	}
	ctx, cancel := r.context(ctx)
	defer cancel()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, updateDocument(patch, r.now()), opts).Decode(&doc)
	if err != nil {
		return nil, mapError(err)
	}
	return doc.book(), nil
}

// DeleteBook deletes a book document.
func (r *Repository) DeleteBook(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrRecordNotFound
	}
	ctx, cancel := r.context(ctx)
	defer cancel()
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrRecordNotFound
	}
	return nil
}

// filterDocument translates listing filters into a query. The title is matched
// literally: user input never reaches the regex engine unescaped.
func filterDocument(filters data.Filters) bson.M {
	filter := bson.M{}
	if filters.Status != "" {
		filter["status"] = string(filters.Status)
	}
	if filters.Category != "" {
		filter["category"] = filters.Category
	}
	if filters.Title != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(filters.Title), Options: "i"}
	}
	return filter
}

func updateDocument(patch data.BookPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Author != nil {
		set["author"] = *patch.Author
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Notes != nil {
		set["notes"] = toNoteDocuments(*patch.Notes)
	}
	return bson.M{"$set": set}
}
