package comments

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Nurshot/manga-backend/pkg/models"
)

// listCap bounds how many comments one request returns.
const listCap = 100

type Repo struct {
	Coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{Coll: db.Collection("comments")}
}

func (r *Repo) Create(ctx context.Context, cm models.Comment) (models.Comment, error) {
	cm.ID = bson.NewObjectID()
	if cm.CreatedAt.IsZero() {
		cm.CreatedAt = time.Now().UTC()
	}

	if _, err := r.Coll.InsertOne(ctx, cm); err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return cm, nil
}

// ListByManga returns the manga's newest comments, capped at listCap.
func (r *Repo) ListByManga(ctx context.Context, mangaID int64) ([]models.Comment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(listCap)

	cur, err := r.Coll.Find(ctx, bson.D{{Key: "manga_id", Value: mangaID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Comment
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return out, nil
}
