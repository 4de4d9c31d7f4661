// Package projector reshapes stored documents into their external JSON form.
//
// Every document (at any depth) has its "_id" key renamed to "id", and every
// ObjectID value is rendered as its hex string. Structs are first normalised
// through bson so their bson field names become the external keys.
//
//	out := projector.Project(shop)                            // one document
//	out := projector.Project(products)                        // a list
//	out := projector.Project(account, projector.Omit("password"))
//
// Projection is idempotent: feeding an already-projected value back in
// returns an equal value.
package projector

import (
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doc is the external representation of a single document.
type Doc = map[string]any

type options struct {
	omit map[string]struct{}
}

// Option customises a projection.
type Option func(*options)

// Omit drops the named keys from every top-level document.
func Omit(keys ...string) Option {
	return func(o *options) {
		if o.omit == nil {
			o.omit = make(map[string]struct{}, len(keys))
		}
		for _, k := range keys {
			o.omit[k] = struct{}{}
		}
	}
}

// Project converts v (a document, a struct, or a sequence of either) into
// plain maps, slices and scalars ready for JSON encoding.
func Project(v any, opts ...Option) any {
	o := &options{}
	for _, fn := range opts {
		fn(o)
	}
	return project(v, o, true)
}

// One projects a single document and returns it as a Doc. A nil or
// non-document input yields nil.
func One(v any, opts ...Option) Doc {
	doc, _ := Project(v, opts...).(Doc)
	return doc
}

// Many projects a sequence and always returns a non-nil slice.
func Many(v any, opts ...Option) []any {
	if out, ok := Project(v, opts...).([]any); ok {
		return out
	}
	return []any{}
}

func project(v any, o *options, top bool) any {
	switch t := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return objectIDString(t)
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t
	case string, bool, int, int32, int64, float32, float64:
		return t
	case primitive.M:
		return projectMap(t, o, top)
	case map[string]any:
		return projectMap(t, o, top)
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return projectMap(m, o, top)
	case primitive.A:
		return projectSlice(reflect.ValueOf([]any(t)), o, top)
	case []any:
		return projectSlice(reflect.ValueOf(t), o, top)
	case []byte:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return project(rv.Elem().Interface(), o, top)
	case reflect.Slice:
		if rv.IsNil() {
			return []any{}
		}
		return projectSlice(rv, o, top)
	case reflect.Array:
		return projectSlice(rv, o, top)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return projectMap(m, o, top)
	case reflect.Struct:
		doc, err := toDocument(v)
		if err != nil {
			return v
		}
		return projectMap(doc, o, top)
	}

	return v
}

func projectMap(m map[string]any, o *options, top bool) Doc {
	out := make(Doc, len(m))
	for k, val := range m {
		if top {
			if _, skip := o.omit[k]; skip {
				continue
			}
		}
		if k == "_id" {
			out["id"] = project(val, o, false)
			continue
		}
		if _, exists := out[k]; exists && k == "id" {
			continue
		}
		out[k] = project(val, o, false)
	}
	return out
}

// projectSlice keeps the caller's top-level flag so that each element of a
// top-level list is treated as a document for Omit.
func projectSlice(rv reflect.Value, o *options, top bool) []any {
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = project(rv.Index(i).Interface(), o, top)
	}
	return out
}

func objectIDString(id primitive.ObjectID) any {
	if id.IsZero() {
		return nil
	}
	return id.Hex()
}

func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
