package store

import (
	"context"
	"sync"

	kivik "github.com/go-kivik/kivik/v4"

	"github.com/evalgo/mansa/common"
	"github.com/evalgo/mansa/model"
)

// entityDoc is the CouchDB wire shape for a model.Entity.
type entityDoc struct {
	ID              string                 `json:"_id"`
	Rev             string                 `json:"_rev,omitempty"`
	NetworkID       string                 `json:"network_id"`
	EntityType      model.EntityType       `json:"entity_type"`
	DateTime        uint64                 `json:"date_time"`
	Source          string                 `json:"source"`
	SourceFollowers *uint64                `json:"source_followers,omitempty"`
	AuthorID        *string                `json:"author_id,omitempty"`
	AuthorName      *string                `json:"author_name,omitempty"`
	Title           *string                `json:"title,omitempty"`
	Content         *string                `json:"content,omitempty"`
	Rating          *uint64                `json:"rating,omitempty"`
	Images          []string               `json:"images"`
	SocialNetwork   model.SocialNetworkTag `json:"social_network"`
}

// entityDocID derives the deterministic document id CouchDB uses as
// the upsert key. network_id is only unique within (social_network,
// entity_type), so both are folded into the id (spec.md §4.4).
func entityDocID(e model.Entity) string {
	return string(e.SocialNetwork) + ":" + string(e.EntityType) + ":" + e.NetworkID
}

func toEntityDoc(e model.Entity) entityDoc {
	return entityDoc{
		ID:              entityDocID(e),
		NetworkID:       e.NetworkID,
		EntityType:      e.EntityType,
		DateTime:        e.DateTime,
		Source:          e.Source,
		SourceFollowers: e.SourceFollowers,
		AuthorID:        e.AuthorID,
		AuthorName:      e.AuthorName,
		Title:           e.Title,
		Content:         e.Content,
		Rating:          e.Rating,
		Images:          e.Images,
		SocialNetwork:   e.SocialNetwork,
	}
}

// UpsertMany replaces every non-id field of each entity, matched by
// its deterministic identifier; a fresh entity is inserted instead.
// Each entity is independently awaited in parallel: one entity's
// conflict or transport error is logged and skipped rather than
// aborting the batch (spec.md §4.4).
func (c *Client) UpsertMany(ctx context.Context, entities []model.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(len(entities))
	for _, e := range entities {
		go func(e model.Entity) {
			defer wg.Done()
			if err := c.upsertOne(ctx, e); err != nil {
				common.Logger.WithFields(map[string]interface{}{
					"network_id":     e.NetworkID,
					"entity_type":    e.EntityType,
					"social_network": e.SocialNetwork,
					"error":          err.Error(),
				}).Error("entity upsert failed")
			}
		}(e)
	}
	wg.Wait()
	return nil
}

func (c *Client) upsertOne(ctx context.Context, e model.Entity) error {
	doc := toEntityDoc(e)

	row := c.entities.Get(ctx, doc.ID)
	var existing entityDoc
	if err := row.ScanDoc(&existing); err == nil {
		doc.Rev = existing.Rev
	}

	_, err := c.entities.Put(ctx, doc.ID, doc)
	if err != nil {
		return &Error{StatusCode: kivik.HTTPStatus(err), Op: "upsert_entity:" + doc.ID, Reason: err.Error()}
	}
	return nil
}
