package common

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements DocStore on top of a MongoDB database. Document ids
// are ObjectID hex strings stored as the _id field, except where a caller
// supplies its own natural key (the per-blog stats document uses the blog
// id).
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) GetDocument(ctx context.Context, collection, id string, dest any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(dest)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filter Filter, opts QueryOpts, dest any) error {
	findOpts := options.Find()
	if opts.Sort != "" {
		order := 1
		if opts.Desc {
			order = -1
		}
		findOpts.SetSort(bson.D{{Key: opts.Sort, Value: order}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, mongoFilter(filter), findOpts)
	if err != nil {
		return err
	}

	return cursor.All(ctx, dest)
}

func (s *MongoStore) CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error) {
	return s.db.Collection(collection).CountDocuments(ctx, mongoFilter(filter))
}

func (s *MongoStore) CreateDocument(ctx context.Context, collection string, data any) (string, error) {
	doc, err := toDocument(data)
	if err != nil {
		return "", err
	}

	id, ok := doc["_id"].(string)
	if !ok || id == "" {
		id = bson.NewObjectID().Hex()
		doc["_id"] = id
	}

	_, err = s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		switch {
		case mongo.IsDuplicateKeyError(err):
			return "", ErrDuplicateKey
		default:
			return "", err
		}
	}

	return id, nil
}

func (s *MongoStore) UpdateDocument(ctx context.Context, collection, id string, fields Fields) error {
	res, err := s.db.Collection(collection).UpdateByID(ctx, id, mongoUpdate(fields, nil))
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (s *MongoStore) UpsertDocument(ctx context.Context, collection, id string, insert, update Fields) error {
	_, err := s.db.Collection(collection).UpdateByID(ctx, id, mongoUpdate(update, insert), options.UpdateOne().SetUpsert(true))
	if err != nil {
		switch {
		// A lost upsert race surfaces as a duplicate _id; the document
		// exists now, so retry once as a plain update.
		case mongo.IsDuplicateKeyError(err):
			_, err = s.db.Collection(collection).UpdateByID(ctx, id, mongoUpdate(update, nil))
			return err
		default:
			return err
		}
	}

	return nil
}

func (s *MongoStore) DeleteDocument(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (s *MongoStore) DeleteDocuments(ctx context.Context, collection string, filter Filter) (int64, error) {
	res, err := s.db.Collection(collection).DeleteMany(ctx, mongoFilter(filter))
	if err != nil {
		return 0, err
	}

	return res.DeletedCount, nil
}

func (s *MongoStore) EnsureUniqueIndex(ctx context.Context, collection string, fields ...string) error {
	keys := bson.D{}
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}

	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("could not create unique index on %s: %w", collection, err)
	}

	return nil
}

// mongoFilter translates a Filter into a mongo filter document.
func mongoFilter(filter Filter) bson.M {
	m := bson.M{}
	for k, v := range filter {
		switch val := v.(type) {
		case Regex:
			m[k] = bson.M{"$regex": string(val), "$options": "i"}
		default:
			m[k] = v
		}
	}

	return m
}

// mongoUpdate splits Fields into $set/$inc/$addToSet/$pull clauses and
// attaches insert defaults as $setOnInsert so an upsert creates and
// increments the document in one atomic write.
func mongoUpdate(fields, insert Fields) bson.M {
	set := bson.M{}
	inc := bson.M{}
	addToSet := bson.M{}
	pull := bson.M{}

	for k, v := range fields {
		switch val := v.(type) {
		case Inc:
			inc[k] = int64(val)
		case AddToSet:
			addToSet[k] = string(val)
		case Pull:
			pull[k] = string(val)
		default:
			set[k] = v
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(pull) > 0 {
		update["$pull"] = pull
	}
	if len(insert) > 0 {
		setOnInsert := bson.M{}
		for k, v := range insert {
			setOnInsert[k] = v
		}
		update["$setOnInsert"] = setOnInsert
	}

	return update
}

// toDocument converts an arbitrary struct into a mutable bson document.
func toDocument(data any) (bson.M, error) {
	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}
