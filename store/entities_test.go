package store

import (
	"testing"

	"github.com/evalgo/mansa/model"
)

func TestEntityDocIDIsDeterministic(t *testing.T) {
	e := model.Entity{
		NetworkID:     "t3_abc123",
		EntityType:    model.EntityPost,
		SocialNetwork: model.Reddit,
	}
	id1 := entityDocID(e)
	id2 := entityDocID(e)
	if id1 != id2 {
		t.Fatalf("entityDocID not deterministic: %q vs %q", id1, id2)
	}
	if id1 != "reddit:Post:t3_abc123" {
		t.Fatalf("unexpected id: %q", id1)
	}
}

func TestEntityDocIDScopedByType(t *testing.T) {
	post := model.Entity{NetworkID: "x", EntityType: model.EntityPost, SocialNetwork: model.Reddit}
	comment := model.Entity{NetworkID: "x", EntityType: model.EntityComment, SocialNetwork: model.Reddit}
	if entityDocID(post) == entityDocID(comment) {
		t.Fatal("same network_id across entity types must not collide")
	}
}

func TestToEntityDocRoundTrip(t *testing.T) {
	followers := uint64(42)
	e := model.Entity{
		NetworkID:       "t3_abc",
		EntityType:      model.EntityPost,
		DateTime:        123,
		Source:          "r/golang",
		SourceFollowers: &followers,
		Images:          []string{"https://example.com/a.jpg"},
		SocialNetwork:   model.Reddit,
	}
	doc := toEntityDoc(e)
	if doc.ID != entityDocID(e) {
		t.Fatalf("doc id mismatch: %q vs %q", doc.ID, entityDocID(e))
	}
	if doc.NetworkID != e.NetworkID || *doc.SourceFollowers != followers {
		t.Fatal("field mapping lost data")
	}
}
