package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per asset, keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type assetDocument struct {
	Name     string    `bson:"_id"`
	Data     []byte    `bson:"data,omitempty"`
	Size     int       `bson:"size"`
	Modified time.Time `bson:"modified"`
}

// NewMongoStore connects to uri and uses database.collection for assets.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, storeError(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storeError(err, "ping mongo")
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (s *MongoStore) Put(ctx context.Context, name string, buf []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	doc := assetDocument{Name: name, Data: buf, Size: len(buf), Modified: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storeError(err, "mongo put %s", name)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var doc assetDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storeError(err, "mongo get %s", name)
	}
	if doc.Data == nil {
		doc.Data = []byte{}
	}
	return doc.Data, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Asset, error) {
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, storeError(err, "mongo list")
	}
	var docs []assetDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeError(err, "mongo list")
	}

	out := make([]Asset, 0, len(docs))
	for _, d := range docs {
		out = append(out, Asset{Name: d.Name, Size: d.Size, Modified: d.Modified})
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return storeError(err, "mongo delete %s", name)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
