package store

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sporhub/newscrawler/internal/config"
	"github.com/sporhub/newscrawler/internal/news"
)

// Mongo persists headlines and admin actions in MongoDB.
type Mongo struct {
	client    *mongo.Client
	headlines *mongo.Collection
	adminLogs *mongo.Collection
	logger    *slog.Logger
}

// Connect establishes the MongoDB connection and verifies it with a
// ping.
func Connect(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Mongo, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Mongo{
		client:    client,
		headlines: db.Collection(cfg.NewsCollection),
		adminLogs: db.Collection(cfg.AdminLogCollection),
		logger:    logger.With("component", "mongo_store"),
	}, nil
}

// EnsureIndexes creates the indexes the crawler relies on. The unique
// source URL index is the last line of defense against duplicates.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.headlines.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source_url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "published_date", Value: -1}},
		},
	})
	if err != nil {
		return &news.StoreError{Op: "ensure_indexes", Err: err}
	}
	return nil
}

// Insert stores a new headline, assigning its id and timestamps.
func (m *Mongo) Insert(ctx context.Context, h *news.Headline) error {
	now := time.Now().UTC()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = now
	h.UpdatedAt = now

	if _, err := m.headlines.InsertOne(ctx, h); err != nil {
		return &news.StoreError{Op: "insert", Err: err}
	}
	return nil
}

// Exists reports whether a headline with the given title
// (case-insensitive, exact text) or source URL is already stored. An
// empty title matches on URL only.
func (m *Mongo) Exists(ctx context.Context, title, sourceURL string) (bool, error) {
	var or bson.A
	if title != "" {
		or = append(or, bson.M{"title": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(title) + "$",
			Options: "i",
		}})
	}
	if sourceURL != "" {
		or = append(or, bson.M{"source_url": sourceURL})
	}
	if len(or) == 0 {
		return false, nil
	}

	err := m.headlines.FindOne(ctx, bson.M{"$or": or},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, &news.StoreError{Op: "exists", Err: err}
	}
	return true, nil
}

// ListRecent returns up to limit headlines, newest publication first.
func (m *Mongo) ListRecent(ctx context.Context, limit int) ([]news.Headline, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "published_date", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := m.headlines.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, &news.StoreError{Op: "list_recent", Err: err}
	}
	defer cur.Close(ctx)

	var out []news.Headline
	if err := cur.All(ctx, &out); err != nil {
		return nil, &news.StoreError{Op: "list_recent", Err: err}
	}
	return out, nil
}

// UpdateContent replaces a headline's body text.
func (m *Mongo) UpdateContent(ctx context.Context, id, content string) error {
	res, err := m.headlines.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"content":    content,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return &news.StoreError{Op: "update_content", Err: err}
	}
	if res.MatchedCount == 0 {
		return &news.StoreError{Op: "update_content", Err: mongo.ErrNoDocuments}
	}
	return nil
}

// LogAdminAction records an administrative action in the audit
// collection. Failures are logged and swallowed: auditing never blocks
// the action itself.
func (m *Mongo) LogAdminAction(ctx context.Context, actorID, actionType, description string) {
	doc := bson.M{
		"_id":         uuid.NewString(),
		"admin_id":    actorID,
		"action_type": actionType,
		"description": description,
		"created_at":  time.Now().UTC(),
	}
	if _, err := m.adminLogs.InsertOne(ctx, doc); err != nil {
		m.logger.Warn("admin action log failed", "action", actionType, "error", err)
	}
}

// Close disconnects from MongoDB.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
