// Package reddit implements the C6 handler from spec.md §4.6: URL
// construction, OAuth2 authentication, response-header extraction, the
// parse cycle and its spawn rules, and the Listing→Entity transform.
package reddit

import (
	"encoding/json"
	"fmt"
)

// AuthResponse is the JSON body Reddit's access_token endpoint returns.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   uint64 `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Children wraps one listing entry; Kind is Reddit's own type tag
// ("t3" for posts, "t1" for comments) and is carried through unused.
type Children[T any] struct {
	Kind string `json:"kind"`
	Data T      `json:"data"`
}

// Data is the payload of a Listing: an optional pagination cursor plus
// the page's items.
type Data[T any] struct {
	After    *string       `json:"after"`
	Children []Children[T] `json:"children"`
}

// Listing is Reddit's generic paginated-collection envelope.
type Listing[T any] struct {
	Kind string  `json:"kind"`
	Data Data[T] `json:"data"`
}

// ThreadPage is the response to a subreddit listing request: a single
// Listing of Post.
type ThreadPage struct {
	Posts Listing[Post]
}

// UnmarshalJSON accepts the bare Listing object Reddit sends for
// thread-listing endpoints.
func (p *ThreadPage) UnmarshalJSON(b []byte) error {
	var listing Listing[Post]
	if err := json.Unmarshal(b, &listing); err != nil {
		return err
	}
	p.Posts = listing
	return nil
}

// CommentPage is the response to a post's comments request: Reddit
// sends a two-element JSON array, [postListing, commentListing].
type CommentPage struct {
	Post     Listing[Post]
	Comments Listing[Comment]
}

// UnmarshalJSON decodes Reddit's two-element-array comment response
// into its post and comment listings.
func (p *CommentPage) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("reddit: expected a 2-element comment page array, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Post); err != nil {
		return fmt.Errorf("reddit: decoding post listing: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Comments); err != nil {
		return fmt.Errorf("reddit: decoding comment listing: %w", err)
	}
	return nil
}

// Preview carries a post's image gallery, when present.
type Preview struct {
	Images []Image `json:"images"`
}

// Image is one preview image; only the resolved source URL is kept.
type Image struct {
	Source ImageSource `json:"source"`
}

// ImageSource is the resolved URL of a preview image.
type ImageSource struct {
	URL string `json:"url"`
}

// Post is one entry in a subreddit listing.
type Post struct {
	ID                     string   `json:"name"`
	Created                *float64 `json:"created"`
	SubredditNamePrefixed  *string  `json:"subreddit_name_prefixed"`
	SubredditSubscribers   *uint64  `json:"subreddit_subscribers"`
	Title                  string   `json:"title"`
	SelfText               *string  `json:"selftext"`
	AuthorFullname         *string  `json:"author_fullname"`
	Author                 *string  `json:"author"`
	Ups                    uint64   `json:"ups"`
	Preview                *Preview `json:"preview"`
}

// Comment is one entry in a post's comment listing.
type Comment struct {
	ID                    string   `json:"id"`
	ParentID              string   `json:"parent_id"`
	Created               *float64 `json:"created"`
	Score                 uint64   `json:"score"`
	AuthorFullname        *string  `json:"author_fullname"`
	Author                *string  `json:"author"`
	SubredditNamePrefixed *string  `json:"subreddit_name_prefixed"`
	Body                  *string  `json:"body"`
}
