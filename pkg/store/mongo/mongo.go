// Package mongo provides a store.Model backed by a MongoDB collection.
//
// Documents are read as bson.M and normalized to plain map[string]any values
// so that redaction and dot-path helpers can walk them. Route ids are matched
// both as strings and, when they are 24-character hex strings, as ObjectIDs.
// Other string filter values also match the number or boolean they spell, so
// ?age=30 finds a stored 30 just as it does in the memory store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/getmockd/restkit/internal/id"
	"github.com/getmockd/restkit/pkg/store"
)

// Model is a store.Model over one MongoDB collection.
type Model struct {
	name string
	coll *mongo.Collection

	mu      sync.RWMutex
	statics map[string]any
}

var (
	_ store.Model          = (*Model)(nil)
	_ store.StaticProvider = (*Model)(nil)
)

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// New returns a model for the collection called name in db.
func New(db *mongo.Database, name string) *Model {
	return &Model{
		name:    name,
		coll:    db.Collection(name),
		statics: make(map[string]any),
	}
}

// Name returns the collection name.
func (m *Model) Name() string {
	return m.name
}

// SetStatic registers a named static value.
func (m *Model) SetStatic(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statics[key] = value
}

// Static returns a named static value.
func (m *Model) Static(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.statics[key]
	return v, ok
}

// Find starts a query over the collection.
func (m *Model) Find(filter store.Document) store.Query {
	return &query{model: m, filter: filter}
}

// FindByID loads one document by id.
func (m *Model) FindByID(ctx context.Context, docID string) (store.Document, error) {
	var raw bson.M
	err := m.coll.FindOne(ctx, bson.M{store.IDField: idMatch(docID)}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &store.NotFoundError{Model: m.name, ID: docID}
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %q: %w", m.name, docID, err)
	}
	return toDocument(raw), nil
}

// New returns an unsaved copy of fields with an id assigned if missing.
func (m *Model) New(fields store.Document) store.Document {
	doc := make(store.Document, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	if v, ok := doc[store.IDField]; !ok || v == nil || v == "" {
		doc[store.IDField] = id.New()
	}
	return doc
}

// Insert adds doc with InsertOne. A duplicate key on _id is reported as a
// *store.DuplicateIDError.
func (m *Model) Insert(ctx context.Context, doc store.Document) (store.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("insert %s: document is nil", m.name)
	}
	if v, ok := doc[store.IDField]; !ok || v == nil || v == "" {
		doc[store.IDField] = id.New()
	}

	if _, err := m.coll.InsertOne(ctx, bson.M(doc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &store.DuplicateIDError{Model: m.name, ID: fmt.Sprint(doc[store.IDField])}
		}
		return nil, fmt.Errorf("insert %s: %w", m.name, err)
	}
	return doc, nil
}

// Save upserts doc by id.
func (m *Model) Save(ctx context.Context, doc store.Document) (store.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("save %s: document is nil", m.name)
	}
	if v, ok := doc[store.IDField]; !ok || v == nil || v == "" {
		doc[store.IDField] = id.New()
	}

	_, err := m.coll.ReplaceOne(ctx,
		bson.M{store.IDField: doc[store.IDField]},
		bson.M(doc),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", m.name, err)
	}
	return doc, nil
}

// Remove deletes every document matching filter.
func (m *Model) Remove(ctx context.Context, filter store.Document) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, filterDoc(filter))
	if err != nil {
		return 0, fmt.Errorf("remove from %s: %w", m.name, err)
	}
	return res.DeletedCount, nil
}

type query struct {
	model  *Model
	filter store.Document
	sort   string
	limit  int
	skip   int
}

func (q *query) Sort(spec string) store.Query {
	q.sort = spec
	return q
}

func (q *query) Limit(n int) store.Query {
	q.limit = n
	return q
}

func (q *query) Skip(n int) store.Query {
	q.skip = n
	return q
}

func (q *query) Exec(ctx context.Context) ([]store.Document, error) {
	opts := options.Find()
	if s := sortDoc(q.sort); len(s) > 0 {
		opts.SetSort(s)
	}
	if q.limit != 0 {
		opts.SetLimit(int64(q.limit))
	}
	if q.skip > 0 {
		opts.SetSkip(int64(q.skip))
	}

	cur, err := q.model.coll.Find(ctx, filterDoc(q.filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", q.model.name, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("read %s cursor: %w", q.model.name, err)
	}

	docs := make([]store.Document, len(raw))
	for i, r := range raw {
		docs[i] = toDocument(r)
	}
	return docs, nil
}

// sortDoc converts a sort spec into an ordered bson.D.
func sortDoc(spec string) bson.D {
	fields := store.ParseSort(spec)
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Descending {
			dir = -1
		}
		d = append(d, bson.E{Key: f.Field, Value: dir})
	}
	return d
}

// filterDoc converts a store filter into a bson filter. Nil becomes the empty
// filter, which matches every document.
func filterDoc(filter store.Document) bson.M {
	out := make(bson.M, len(filter))
	for k, v := range filter {
		s, ok := v.(string)
		switch {
		case !ok:
			out[k] = v
		case k == store.IDField:
			out[k] = idMatch(s)
		default:
			out[k] = scalarMatch(s)
		}
	}
	return out
}

// idMatch matches a string id, or the equivalent ObjectID for hex ids.
func idMatch(s string) any {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return s
	}
	return bson.M{"$in": bson.A{s, oid}}
}

// scalarMatch matches s, or the int, float or bool whose %v form is exactly s.
func scalarMatch(s string) any {
	var typed any
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		typed = n
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		typed = f
	} else if b, err := strconv.ParseBool(s); err == nil {
		typed = b
	}
	if typed == nil || fmt.Sprint(typed) != s {
		return s
	}
	return bson.M{"$in": bson.A{s, typed}}
}

func toDocument(m bson.M) store.Document {
	doc, _ := normalize(m).(store.Document)
	return doc
}

// normalize rewrites bson container types into plain maps and slices.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
