package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store. Documents are kept as bson.M after a
// bson round trip, so decoding behaves the same as against MongoDB.
type Memory struct {
	mu   sync.Mutex
	cols map[string]*memCollection
}

// NewMemory returns an empty Memory store honouring the unique entries of
// Indexes.
func NewMemory() *Memory {
	return &Memory{cols: make(map[string]*memCollection)}
}

func (m *Memory) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.cols[name]; ok {
		return c
	}
	c := &memCollection{name: name}
	for _, idx := range Indexes {
		if idx.Collection == name && idx.Unique {
			c.unique = append(c.unique, idx.Keys)
		}
	}
	m.cols[name] = c
	return c
}

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

type memCollection struct {
	name   string
	mu     sync.RWMutex
	docs   []bson.M
	unique [][]string
}

func (c *memCollection) InsertOne(_ context.Context, doc any) (primitive.ObjectID, error) {
	m, err := toM(doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("store: insert %s: %w", c.name, err)
	}

	id, _ := m["_id"].(primitive.ObjectID)
	if id.IsZero() {
		id = primitive.NewObjectID()
		m["_id"] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnique(m, nil); err != nil {
		return primitive.NilObjectID, err
	}
	c.docs = append(c.docs, m)
	return id, nil
}

func (c *memCollection) FindOne(_ context.Context, filter bson.M, dest any) error {
	want, err := normalizeFilter(filter)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.docs {
		if matches(d, want) {
			return decode(d, dest)
		}
	}
	return ErrNotFound
}

func (c *memCollection) Find(_ context.Context, filter bson.M, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: find %s: dest must be a pointer to a slice, got %T", c.name, dest)
	}
	want, err := normalizeFilter(filter)
	if err != nil {
		return err
	}

	sliceType := rv.Elem().Type()
	out := reflect.MakeSlice(sliceType, 0, 0)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.docs {
		if !matches(d, want) {
			continue
		}
		elem := reflect.New(sliceType.Elem())
		if err := decode(d, elem.Interface()); err != nil {
			return fmt.Errorf("store: decode %s: %w", c.name, err)
		}
		out = reflect.Append(out, elem.Elem())
	}
	rv.Elem().Set(out)
	return nil
}

func (c *memCollection) UpdateOne(_ context.Context, filter bson.M, set bson.M) (int64, error) {
	want, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}
	values, err := toM(set)
	if err != nil {
		return 0, fmt.Errorf("store: update %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range c.docs {
		if !matches(d, want) {
			continue
		}
		updated := cloneM(d)
		for path, v := range values {
			setPath(updated, path, v)
		}
		if err := c.checkUnique(updated, d); err != nil {
			return 0, err
		}
		c.docs[i] = updated
		return 1, nil
	}
	return 0, nil
}

func (c *memCollection) Count(_ context.Context, filter bson.M) (int64, error) {
	want, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, d := range c.docs {
		if matches(d, want) {
			n++
		}
	}
	return n, nil
}

// checkUnique must be called with c.mu held. self is the document being
// replaced, if any, and is skipped.
func (c *memCollection) checkUnique(candidate, self bson.M) error {
	for _, keys := range c.unique {
		probe := bson.M{}
		for _, k := range keys {
			v, ok := lookup(candidate, k)
			if !ok || v == nil {
				probe = nil
				break
			}
			probe[k] = v
		}
		if probe == nil {
			continue
		}
		for _, d := range c.docs {
			if self != nil && sameID(d, self) {
				continue
			}
			if matches(d, probe) {
				return fmt.Errorf("%w: %s %v", ErrDuplicate, c.name, keys)
			}
		}
	}
	return nil
}

func sameID(a, b bson.M) bool {
	return reflect.DeepEqual(a["_id"], b["_id"])
}

func toM(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode(doc bson.M, dest any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, dest)
}

func cloneM(m bson.M) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		switch nested := v.(type) {
		case bson.M:
			out[k] = cloneM(nested)
		case map[string]any:
			out[k] = cloneM(bson.M(nested))
		default:
			out[k] = v
		}
	}
	return out
}

// normalizeFilter runs the filter through bson so its values have the same
// Go types as stored values.
func normalizeFilter(filter bson.M) (bson.M, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	m, err := toM(filter)
	if err != nil {
		return nil, fmt.Errorf("store: filter: %w", err)
	}
	return m, nil
}

func matches(doc, filter bson.M) bool {
	for path, want := range filter {
		got, ok := lookup(doc, path)
		if want == nil {
			if ok && got != nil {
				return false
			}
			continue
		}
		if !ok || !equal(got, want) {
			return false
		}
	}
	return true
}

func lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case bson.M:
			v, ok := c[part]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := c[part]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.D:
			found := false
			for _, e := range c {
				if e.Key == part {
					cur, found = e.Value, true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return cur, true
}

func setPath(doc bson.M, path string, v any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		switch next := cur[part].(type) {
		case bson.M:
			cur = next
		case map[string]any:
			cur = bson.M(next)
		case bson.D:
			m := make(bson.M, len(next))
			for _, e := range next {
				m[e.Key] = e.Value
			}
			cur[part] = m
			cur = m
		default:
			m := bson.M{}
			cur[part] = m
			cur = m
		}
	}
	cur[parts[len(parts)-1]] = v
}

func equal(a, b any) bool {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
