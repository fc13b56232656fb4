// Package resource separates API output shapes from database models. A
// transformer declares exactly which fields an endpoint exposes, so
// adding a column to a model never leaks it into responses.
//
//	type ListingResource struct{ resource.Base }
//	func (r *ListingResource) ToArray(v interface{}) resource.Map {
//	    l := v.(models.Listing)
//	    return resource.Map{"id": l.ID, "crop": l.Crop, "price": l.Price}
//	}
//
//	resource.New(&ListingResource{}, listing).Respond(w)
//	resource.CollectionOf(&ListingResource{}, listings).WithPagination(p).Respond(w)
package resource

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/agriconnect-ug/agriconnect/pkg/orm"
)

// Map is the output shape of a transformer.
type Map = map[string]interface{}

// Transformer turns one model value into its API shape.
type Transformer interface {
	ToArray(v interface{}) Map
}

// Base is embedded by every transformer; shared behavior lands here.
type Base struct{}

// Resource pairs one model value with its transformer.
type Resource struct {
	t    Transformer
	item interface{}
}

// New wraps a single model value.
func New(t Transformer, item interface{}) *Resource {
	return &Resource{t: t, item: item}
}

// Respond writes {"data": <shape>} with status 200.
func (r *Resource) Respond(w http.ResponseWriter) {
	writeJSON(w, Map{"data": r.t.ToArray(r.item)})
}

// Collection pairs a model slice with a transformer.
type Collection struct {
	t     Transformer
	items interface{}
	page  *orm.Pagination
}

// CollectionOf wraps a slice of models. items may be a []T or *[]T;
// anything else renders as an empty list.
func CollectionOf(t Transformer, items interface{}) *Collection {
	return &Collection{t: t, items: items}
}

// WithPagination attaches page metadata to the envelope.
func (c *Collection) WithPagination(p orm.Pagination) *Collection {
	c.page = &p
	return c
}

// Respond writes {"data": [...]} plus pagination when attached.
func (c *Collection) Respond(w http.ResponseWriter) {
	out := Map{"data": c.rows()}
	if c.page != nil {
		out["pagination"] = c.page
	}
	writeJSON(w, out)
}

// rows transforms every element. Reflection keeps CollectionOf generic
// over model slices; transformers type-assert their own element type.
func (c *Collection) rows() []Map {
	rv := reflect.ValueOf(c.items)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	out := make([]Map, 0)
	if rv.Kind() != reflect.Slice {
		return out
	}
	for i := 0; i < rv.Len(); i++ {
		out = append(out, c.t.ToArray(rv.Index(i).Interface()))
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
