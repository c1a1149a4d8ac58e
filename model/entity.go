package model

// EntityType is the normalized output kind produced by a handler's
// transform step.
type EntityType string

const (
	EntityPost    EntityType = "Post"
	EntityComment EntityType = "Comment"
	EntityMessage EntityType = "Message"
)

// Entity is the normalized output unit described in spec.md §3.
// NetworkID is the backend-native identifier and is unique within
// (SocialNetwork, EntityType); upserting replaces every non-id field.
type Entity struct {
	NetworkID       string           `json:"network_id"`
	EntityType      EntityType       `json:"entity_type"`
	DateTime        uint64           `json:"date_time"`
	Source          string           `json:"source"`
	SourceFollowers *uint64          `json:"source_followers,omitempty"`
	AuthorID        *string          `json:"author_id,omitempty"`
	AuthorName      *string          `json:"author_name,omitempty"`
	Title           *string          `json:"title,omitempty"`
	Content         *string          `json:"content,omitempty"`
	Rating          *uint64          `json:"rating,omitempty"`
	Images          []string         `json:"images"`
	SocialNetwork   SocialNetworkTag `json:"social_network"`
}
