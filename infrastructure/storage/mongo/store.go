// ABOUTME: Blog document store on the official MongoDB driver
// ABOUTME: All writes are append-only pushes onto per-blog history arrays

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogforge-app-api/core/domain"
	coreerrors "blogforge-app-api/core/errors"
	"blogforge-app-api/core/interfaces"
	"blogforge-app-api/pkg/config"
)

const blogsCollection = "blogs"

// Store implements interfaces.BlogStore on MongoDB. The client is
// explicitly constructed and injected; its lifecycle (connect, ping,
// close) belongs to the caller's init/teardown path.
type Store struct {
	client *mongo.Client
	blogs  *mongo.Collection
	logger interfaces.Logger
}

// NewStore connects to MongoDB and verifies the connection with a ping.
func NewStore(ctx context.Context, cfg config.MongoConfig, logger interfaces.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: URI cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	return &Store{
		client: client,
		blogs:  client.Database(cfg.Database).Collection(blogsCollection),
		logger: logger,
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// blogDocument mirrors domain.BlogDocument with the driver's ObjectID.
type blogDocument struct {
	ID                primitive.ObjectID       `bson:"_id,omitempty"`
	ProjectID         string                   `bson:"project_id"`
	UserID            string                   `bson:"user_id"`
	Country           string                   `bson:"country"`
	Title             []string                 `bson:"title"`
	PrimaryKeyword    []map[string]interface{} `bson:"primary_keyword"`
	SecondaryKeywords []map[string]interface{} `bson:"secondary_keywords"`
	Categories        []map[string]interface{} `bson:"categories"`
	Titles            []map[string]interface{} `bson:"titles"`
	WordCount         []interface{}            `bson:"word_count"`
	Outlines          []map[string]interface{} `bson:"outlines"`
	Sources           []domain.SourcesRecord   `bson:"sources"`
}

func (d *blogDocument) toDomain() *domain.BlogDocument {
	return &domain.BlogDocument{
		ID:                d.ID.Hex(),
		ProjectID:         d.ProjectID,
		UserID:            d.UserID,
		Country:           d.Country,
		Title:             d.Title,
		PrimaryKeyword:    d.PrimaryKeyword,
		SecondaryKeywords: d.SecondaryKeywords,
		Categories:        d.Categories,
		Titles:            d.Titles,
		WordCount:         d.WordCount,
		Outlines:          d.Outlines,
		Sources:           d.Sources,
	}
}

// objectID parses a blog ID, reporting a validation error for bad input.
func objectID(blogID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(blogID)
	if err != nil {
		return primitive.NilObjectID, &coreerrors.ValidationError{
			Field:   "blog_id",
			Message: fmt.Sprintf("'%s' is not a valid document ID", blogID),
		}
	}
	return oid, nil
}

// FetchBlogDocument returns the blog document scoped to its project and
// owner. fields, when non-empty, restricts the projection.
func (s *Store) FetchBlogDocument(ctx context.Context, blogID, projectID, userID string, fields []string) (*domain.BlogDocument, error) {
	oid, err := objectID(blogID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":        oid,
		"project_id": projectID,
		"user_id":    userID,
	}

	opts := options.FindOne()
	if len(fields) > 0 {
		projection := bson.M{"_id": 1}
		for _, field := range fields {
			projection[field] = 1
		}
		opts.SetProjection(projection)
	}

	var doc blogDocument
	if err := s.blogs.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &coreerrors.NotFoundError{Resource: "blog", ID: blogID}
		}
		return nil, fmt.Errorf("mongo: fetch blog %s: %w", blogID, err)
	}

	return doc.toDomain(), nil
}

// CommitSourcesRun appends a completed run's records in one atomic update.
// No document-level lock is taken; concurrent runs against the same blog
// interleave their appends in arrival order.
func (s *Store) CommitSourcesRun(ctx context.Context, blogID string, commit domain.SourcesCommit) error {
	oid, err := objectID(blogID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$push": bson.M{
			"outlines":              commit.OutlineFinal,
			"sources":               commit.Sources,
			"step_tracking.outline": commit.OutlineStep,
			"step_tracking.sources": commit.SourcesStep,
		},
		"$set": bson.M{
			"step_tracking.current_step": commit.CurrentStep,
			"updated_at":                 time.Now().UTC(),
		},
	}

	result, err := s.blogs.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("mongo: commit sources run for %s: %w", blogID, err)
	}
	if result.MatchedCount == 0 {
		return &coreerrors.NotFoundError{Resource: "blog", ID: blogID}
	}
	return nil
}

// AppendSourcesRecord appends one sources entry, used by the direct
// update path.
func (s *Store) AppendSourcesRecord(ctx context.Context, blogID string, record domain.SourcesRecord) error {
	oid, err := objectID(blogID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$push": bson.M{"sources": record},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := s.blogs.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("mongo: append sources for %s: %w", blogID, err)
	}
	if result.MatchedCount == 0 {
		return &coreerrors.NotFoundError{Resource: "blog", ID: blogID}
	}
	return nil
}

var _ interfaces.BlogStore = (*Store)(nil)
