package common

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemStore is an in-memory DocStore with the same observable semantics as
// MongoStore. It backs the unit tests and the development mode of the app,
// where no database is configured. Documents are normalized through a bson
// round-trip so field types match what the driver would return.
type MemStore struct {
	mu      sync.Mutex
	data    map[string]map[string]bson.M
	indexes map[string][][]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		data:    make(map[string]map[string]bson.M),
		indexes: make(map[string][][]string),
	}
}

func (s *MemStore) collection(name string) map[string]bson.M {
	c, ok := s.data[name]
	if !ok {
		c = make(map[string]bson.M)
		s.data[name] = c
	}

	return c
}

func (s *MemStore) GetDocument(ctx context.Context, collection, id string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collection(collection)[id]
	if !ok {
		return ErrRecordNotFound
	}

	return decodeDocument(doc, dest)
}

func (s *MemStore) Query(ctx context.Context, collection string, filter Filter, opts QueryOpts, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []bson.M
	for _, doc := range s.collection(collection) {
		if matchesFilter(doc, filter) {
			matched = append(matched, doc)
		}
	}

	if opts.Sort != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i][opts.Sort], matched[j][opts.Sort])
			if opts.Desc {
				return c > 0
			}
			return c < 0
		})
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[opts.Offset:]
		}
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	return decodeDocuments(matched, dest)
}

func (s *MemStore) CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, doc := range s.collection(collection) {
		if matchesFilter(doc, filter) {
			n++
		}
	}

	return n, nil
}

func (s *MemStore) CreateDocument(ctx context.Context, collection string, data any) (string, error) {
	doc, err := toDocument(data)
	if err != nil {
		return "", err
	}

	id, ok := doc["_id"].(string)
	if !ok || id == "" {
		id = bson.NewObjectID().Hex()
		doc["_id"] = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, exists := c[id]; exists {
		return "", ErrDuplicateKey
	}

	for _, index := range s.indexes[collection] {
		if s.indexViolated(c, doc, index) {
			return "", ErrDuplicateKey
		}
	}

	c[id] = doc
	return id, nil
}

func (s *MemStore) UpdateDocument(ctx context.Context, collection, id string, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collection(collection)[id]
	if !ok {
		return ErrRecordNotFound
	}

	return applyFields(doc, fields)
}

func (s *MemStore) UpsertDocument(ctx context.Context, collection, id string, insert, update Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	doc, ok := c[id]
	if !ok {
		doc = bson.M{"_id": id}
		if err := applyFields(doc, insert); err != nil {
			return err
		}
		c[id] = doc
	}

	return applyFields(doc, update)
}

func (s *MemStore) DeleteDocument(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, ok := c[id]; !ok {
		return ErrRecordNotFound
	}

	delete(c, id)
	return nil
}

func (s *MemStore) DeleteDocuments(ctx context.Context, collection string, filter Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)

	var deleted int64
	for id, doc := range c {
		if matchesFilter(doc, filter) {
			delete(c, id)
			deleted++
		}
	}

	return deleted, nil
}

func (s *MemStore) EnsureUniqueIndex(ctx context.Context, collection string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.indexes[collection] = append(s.indexes[collection], fields)
	return nil
}

func (s *MemStore) indexViolated(c map[string]bson.M, doc bson.M, index []string) bool {
	for _, existing := range c {
		same := true
		for _, f := range index {
			if compareValues(fieldValue(existing, f), fieldValue(doc, f)) != 0 {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}

	return false
}

func applyFields(doc bson.M, fields Fields) error {
	for k, v := range fields {
		switch val := v.(type) {
		case Inc:
			cur, err := asInt64(doc[k])
			if err != nil {
				return fmt.Errorf("cannot increment field %s: %w", k, err)
			}
			doc[k] = cur + int64(val)
		case AddToSet:
			arr, _ := doc[k].(bson.A)
			found := false
			for _, el := range arr {
				if compareValues(el, string(val)) == 0 {
					found = true
					break
				}
			}
			if !found {
				doc[k] = append(arr, string(val))
			}
		case Pull:
			arr, _ := doc[k].(bson.A)
			kept := bson.A{}
			for _, el := range arr {
				if compareValues(el, string(val)) != 0 {
					kept = append(kept, el)
				}
			}
			doc[k] = kept
		default:
			norm, err := normalizeValue(v)
			if err != nil {
				return err
			}
			doc[k] = norm
		}
	}

	return nil
}

func matchesFilter(doc bson.M, filter Filter) bool {
	for k, v := range filter {
		switch val := v.(type) {
		case Regex:
			field, ok := fieldValue(doc, k).(string)
			if !ok || !strings.Contains(strings.ToLower(field), strings.ToLower(string(val))) {
				return false
			}
		default:
			norm, err := normalizeValue(v)
			if err != nil {
				return false
			}
			if compareValues(fieldValue(doc, k), norm) != 0 {
				return false
			}
		}
	}

	return true
}

// fieldValue resolves a possibly dotted field path within a document.
func fieldValue(doc bson.M, path string) any {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := cur.(bson.M)
		if !ok {
			return nil
		}
		cur = m[p]
	}

	return cur
}

// compareValues orders two normalized bson values. Mixed numeric widths
// compare by value; everything else falls back to string comparison.
func compareValues(a, b any) int {
	ai, aerr := asInt64(a)
	bi, berr := asInt64(b)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asInt64(v any) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	case bson.DateTime:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("value %v is not numeric", v)
	}
}

// normalizeValue round-trips a value through bson so stored field types
// match what the mongo driver produces (time.Time becomes bson.DateTime,
// []string becomes bson.A, and so on).
func normalizeValue(v any) (any, error) {
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return nil, err
	}

	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	return doc["v"], nil
}

func decodeDocument(doc bson.M, dest any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}

	return bson.Unmarshal(raw, dest)
}

// decodeDocuments decodes matched documents into dest, which must be a
// pointer to a slice, mirroring cursor.All.
func decodeDocuments(docs []bson.M, dest any) error {
	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Pointer || slice.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice, got %T", dest)
	}

	elemType := slice.Elem().Type().Elem()
	out := reflect.MakeSlice(slice.Elem().Type(), 0, len(docs))

	for _, doc := range docs {
		elem := reflect.New(elemType)
		if err := decodeDocument(doc, elem.Interface()); err != nil {
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}

	slice.Elem().Set(out)
	return nil
}
