package databases

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memoryStore keeps bson-encoded documents in maps. It is used by the tests and
// by STORAGE=memory for local runs; it evaluates the same filters as Mongo.
type memoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]bson.Raw
	locks       *keyedLocker
}

// NewMemoryStore returns an empty in-memory Store
func NewMemoryStore() Store {
	return &memoryStore{
		collections: make(map[string]map[string]bson.Raw),
		locks:       newKeyedLocker(),
	}
}

type docHeader struct {
	ID      string `bson:"_id"`
	Version int32  `bson:"__v"`
}

func encode(doc interface{}) (bson.Raw, docHeader, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, docHeader{}, err
	}
	var h docHeader
	if err := bson.Unmarshal(data, &h); err != nil {
		return nil, docHeader{}, err
	}
	if h.ID == "" {
		return nil, docHeader{}, errors.New("document has no _id")
	}
	return data, h, nil
}

func (s *memoryStore) collection(name string) map[string]bson.Raw {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]bson.Raw)
		s.collections[name] = c
	}
	return c
}

func (s *memoryStore) Get(_ context.Context, collection, id string, out interface{}) error {
	s.mu.RLock()
	raw, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return bson.Unmarshal(raw, out)
}

func (s *memoryStore) Insert(_ context.Context, collection string, doc interface{}) error {
	raw, h, err := encode(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	if _, exists := c[h.ID]; exists {
		return ErrDuplicateKey
	}
	c[h.ID] = raw
	return nil
}

func (s *memoryStore) Replace(_ context.Context, collection, id string, version int32, doc interface{}) error {
	raw, _, err := encode(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	current, ok := c[id]
	if !ok {
		return ErrNotFound
	}
	var h docHeader
	if err := bson.Unmarshal(current, &h); err != nil {
		return err
	}
	if h.Version != version {
		return ErrConflict
	}
	c[id] = raw
	return nil
}

func (s *memoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	if _, ok := c[id]; !ok {
		return ErrNotFound
	}
	delete(c, id)
	return nil
}

func (s *memoryStore) DeleteMany(_ context.Context, collection string, filter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	c := s.collection(collection)
	for id, raw := range c {
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return n, err
		}
		ok, err := matches(doc, filter)
		if err != nil {
			return n, err
		}
		if ok {
			delete(c, id)
			n++
		}
	}
	return n, nil
}

type matched struct {
	raw bson.Raw
	doc bson.M
}

func (s *memoryStore) Find(_ context.Context, collection string, filter bson.M, out interface{}, opts ...*options.FindOptions) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find result must be a pointer to a slice, got %T", out)
	}

	s.mu.RLock()
	docs := make([]matched, 0, len(s.collections[collection]))
	for _, raw := range s.collections[collection] {
		docs = append(docs, matched{raw: raw})
	}
	s.mu.RUnlock()

	hits := docs[:0]
	for _, m := range docs {
		if err := bson.Unmarshal(m.raw, &m.doc); err != nil {
			return err
		}
		ok, err := matches(m.doc, filter)
		if err != nil {
			return err
		}
		if ok {
			hits = append(hits, m)
		}
	}

	fo := options.MergeFindOptions(opts...)
	if err := sortMatched(hits, fo.Sort); err != nil {
		return err
	}
	if fo.Skip != nil {
		skip := int(*fo.Skip)
		if skip > len(hits) {
			skip = len(hits)
		}
		hits = hits[skip:]
	}
	if fo.Limit != nil && *fo.Limit > 0 && int(*fo.Limit) < len(hits) {
		hits = hits[:*fo.Limit]
	}

	elem := rv.Elem().Type().Elem()
	result := reflect.MakeSlice(rv.Elem().Type(), 0, len(hits))
	for _, m := range hits {
		ep := reflect.New(elem)
		if err := bson.Unmarshal(m.raw, ep.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, ep.Elem())
	}
	rv.Elem().Set(result)
	return nil
}

// sortMatched orders hits by a bson.D sort order. Ties keep _id order so results
// are deterministic.
func sortMatched(hits []matched, order interface{}) error {
	var keys bson.D
	switch t := order.(type) {
	case nil:
	case bson.D:
		keys = t
	case bson.M:
		for k, v := range t {
			keys = append(keys, bson.E{Key: k, Value: v})
		}
	default:
		return fmt.Errorf("unsupported sort order %T", order)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		for _, k := range keys {
			a, _ := lookup(hits[i].doc, k.Key)
			b, _ := lookup(hits[j].doc, k.Key)
			c := sortCompare(normalize(a), normalize(b))
			if dir, _ := normalize(k.Value).(float64); dir < 0 {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		ai, _ := hits[i].doc["_id"].(string)
		bi, _ := hits[j].doc["_id"].(string)
		return ai < bi
	})
	return nil
}

func (s *memoryStore) WithLock(ctx context.Context, ids []string, fn func(ctx context.Context) error) error {
	return s.locks.withLock(ctx, ids, fn)
}

// WithTransaction has no rollback in memory; callers remove what they already
// wrote when a later write fails.
func (s *memoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
