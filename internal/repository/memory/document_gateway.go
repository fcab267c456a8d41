// Package memory is a process-local DocumentGateway for tests and
// STORAGE_DRIVER=memory runs.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository/docstore"

	"github.com/google/uuid"
)

type DocumentGateway struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.Document
	now         func() time.Time
}

func NewDocumentGateway() *DocumentGateway {
	return &DocumentGateway{
		collections: make(map[string]map[string]domain.Document),
		now:         time.Now,
	}
}

// WithClock replaces the write-time source. Returns g for chaining.
func (g *DocumentGateway) WithClock(now func() time.Time) *DocumentGateway {
	g.now = now
	return g
}

func (g *DocumentGateway) ServerTimestamp() interface{} {
	return docstore.Timestamp{}
}

func (g *DocumentGateway) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	doc, ok := g.collections[collection][id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return docstore.Normalize(doc)
}

func (g *DocumentGateway) List(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	where := make(map[string]interface{}, len(q.Where))
	for k, v := range q.Where {
		nv, err := docstore.NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("normalize filter %s: %w", k, err)
		}
		where[k] = nv
	}

	g.mu.RLock()
	var out []domain.Document
	for _, doc := range g.collections[collection] {
		if !matches(doc, where) {
			continue
		}
		cp, err := docstore.Normalize(doc)
		if err != nil {
			g.mu.RUnlock()
			return nil, err
		}
		out = append(out, cp)
	}
	g.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if q.OrderBy != "" {
			c := docstore.Compare(out[i][q.OrderBy], out[j][q.OrderBy])
			if c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return fmt.Sprint(out[i]["id"]) < fmt.Sprint(out[j]["id"])
	})
	return out, nil
}

// uniqueFields mirrors the partial unique indexes of the postgres schema.
var uniqueFields = map[string]string{
	domain.CollectionSkillCategories: "nameKey",
}

// conflictsLocked reports whether doc would share a unique field value with
// another document of the collection. Missing and null values never clash.
func (g *DocumentGateway) conflictsLocked(collection, id string, doc domain.Document) bool {
	field, ok := uniqueFields[collection]
	if !ok {
		return false
	}
	value := doc[field]
	if value == nil {
		return false
	}
	for otherID, other := range g.collections[collection] {
		if otherID != id && reflect.DeepEqual(other[field], value) {
			return true
		}
	}
	return false
}

func matches(doc domain.Document, where map[string]interface{}) bool {
	for k, want := range where {
		if !reflect.DeepEqual(doc[k], want) {
			return false
		}
	}
	return true
}

func (g *DocumentGateway) Create(ctx context.Context, collection string, doc domain.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	stored := docstore.Resolve(doc, g.now())
	stored["id"] = id
	stored, err := docstore.Normalize(stored)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	coll, ok := g.collections[collection]
	if !ok {
		coll = make(map[string]domain.Document)
		g.collections[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return "", domain.ErrDocumentExists
	}
	if g.conflictsLocked(collection, id, stored) {
		return "", domain.ErrDocumentExists
	}
	coll[id] = stored
	return id, nil
}

func (g *DocumentGateway) Update(ctx context.Context, collection, id string, patch domain.Document) error {
	return g.update(ctx, collection, id, nil, patch)
}

func (g *DocumentGateway) UpdateIf(ctx context.Context, collection, id string, expect, patch domain.Document) error {
	want, err := docstore.Normalize(expect)
	if err != nil {
		return err
	}
	return g.update(ctx, collection, id, want, patch)
}

func (g *DocumentGateway) update(ctx context.Context, collection, id string, expect, patch domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resolved, err := docstore.Normalize(docstore.Resolve(patch, g.now()))
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	doc, ok := g.collections[collection][id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	if !matches(doc, expect) {
		return domain.ErrPreconditionFailed
	}

	merged := make(domain.Document, len(doc)+len(resolved))
	for k, v := range doc {
		merged[k] = v
	}
	for k, v := range resolved {
		if k == "id" {
			continue
		}
		merged[k] = v
	}
	if g.conflictsLocked(collection, id, merged) {
		return domain.ErrDocumentExists
	}
	g.collections[collection][id] = merged
	return nil
}

func (g *DocumentGateway) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.collections[collection][id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(g.collections[collection], id)
	return nil
}

func (g *DocumentGateway) IncrementField(ctx context.Context, collection, id, field string, delta int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	doc, ok := g.collections[collection][id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	current, _ := doc[field].(float64)
	doc[field] = current + float64(delta)
	return nil
}
