package source

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

func (l *Loader) loadMongo(ctx context.Context) (*dataset.Dataset, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(l.cfg.MongoURI))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			l.logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	coll := client.Database(l.cfg.Database).Collection(l.cfg.Collection)
	opts := options.Find()
	if l.cfg.Limit > 0 {
		opts.SetLimit(l.cfg.Limit)
	}

	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "find failed").
			WithDetail("collection", l.cfg.Collection)
	}
	defer cursor.Close(ctx)

	var records []record
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode document").
				WithDetail("document", len(records)+1)
		}
		records = append(records, documentRecord(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "cursor failed")
	}

	l.logger.Debug("documents read",
		zap.String("collection", l.cfg.Collection),
		zap.Int("documents", len(records)))
	return l.recordsDataset(records)
}

// documentRecord flattens the top level of a document into a record.
func documentRecord(doc bson.D) record {
	rec := record{values: make(map[string]interface{}, len(doc))}
	for _, e := range doc {
		if _, dup := rec.values[e.Key]; !dup {
			rec.keys = append(rec.keys, e.Key)
		}
		rec.values[e.Key] = bsonValue(e.Value)
	}
	return rec
}

// bsonValue maps BSON values onto the scalar types columns understand.
// Embedded documents and arrays stay as they are and profile as objects.
func bsonValue(v interface{}) interface{} {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0).UTC()
	case primitive.Decimal128:
		return x.String()
	case primitive.Binary:
		return x.Data
	case primitive.Null, primitive.Undefined:
		return nil
	case int32:
		return int64(x)
	}
	return v
}
