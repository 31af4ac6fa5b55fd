// Package mongodb stores books as documents in a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/emzola/shelflog/config"
	"github.com/emzola/shelflog/internal/jsonlog"
	"github.com/emzola/shelflog/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// codeNamespaceExists is returned by create when the collection already exists.
const codeNamespaceExists = 48

// OpenClient creates a MongoDB client configured from cfg. The driver connects
// lazily, so this only fails on an invalid configuration.
func OpenClient(cfg config.Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetServerSelectionTimeout(cfg.Database.ServerSelectionTimeout).
		SetConnectTimeout(cfg.Database.ServerSelectionTimeout).
		SetSocketTimeout(cfg.Database.SocketTimeout).
		SetHeartbeatInterval(cfg.Database.Heartbeat).
		SetMaxPoolSize(uint64(cfg.Database.MaxOpenConns)).
		SetMinPoolSize(uint64(cfg.Database.MinOpenConns)).
		SetRetryWrites(true)
	return mongo.Connect(context.Background(), opts)
}

// Repository is the MongoDB implementation of repository.Repository.
type Repository struct {
	*repository.Monitor
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	timeout    time.Duration
	now        func() time.Time
}

// New wraps client and starts readiness monitoring.
func New(client *mongo.Client, cfg config.Config, logger *jsonlog.Logger) *Repository {
	db := client.Database(cfg.Database.Name)
	r := &Repository{
		client:     client,
		db:         db,
		collection: db.Collection(cfg.Database.Collection),
		timeout:    cfg.Database.OperationTimeout,
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	r.Monitor = repository.NewMonitor("mongodb", r, logger, cfg.Database.ReconnectDelay, cfg.Database.Heartbeat, cfg.Database.OperationTimeout)
	r.Monitor.Start()
	return r
}

// Connect verifies the deployment is reachable and makes sure the books
// collection exists with its schema validator.
func (r *Repository) Connect(ctx context.Context) error {
	if err := r.Ping(ctx); err != nil {
		return err
	}
	opts := options.CreateCollection().SetValidator(bson.M{"$jsonSchema": bookSchema()})
	err := r.db.CreateCollection(ctx, r.collection.Name(), opts)
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
		return nil
	}
	return err
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close stops monitoring and disconnects the client.
func (r *Repository) Close(ctx context.Context) error {
	r.Monitor.Stop()
	return r.client.Disconnect(ctx)
}

// bookSchema mirrors data.ValidateBook so writes that bypass the service are
// rejected by the server as well.
func bookSchema() bson.M {
	nonEmpty := bson.M{"bsonType": "string", "minLength": 1}
	return bson.M{
		"bsonType": "object",
		"required": bson.A{"title", "author", "category", "status", "notes", "createdAt", "updatedAt"},
		"properties": bson.M{
			"title":    nonEmpty,
			"author":   nonEmpty,
			"category": bson.M{"bsonType": "string"},
			"status":   bson.M{"enum": bson.A{"to-read", "reading", "completed"}},
			"notes": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": bson.A{"_id", "content", "createdAt"},
					"properties": bson.M{
						"content":   nonEmpty,
						"createdAt": bson.M{"bsonType": "date"},
					},
				},
			},
			"createdAt": bson.M{"bsonType": "date"},
			"updatedAt": bson.M{"bsonType": "date"},
		},
	}
}

func (r *Repository) context(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// mapError converts driver errors into repository errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrRecordNotFound
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return errors.Join(repository.ErrUnavailable, err)
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			// 121: DocumentValidationFailure
			if we.Code == 121 {
				return errors.Join(repository.ErrFailedValidation, err)
			}
		}
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 121 {
		return errors.Join(repository.ErrFailedValidation, err)
	}
	return err
}
