package reddit

import "github.com/evalgo/mansa/model"

// millisecondsPerSecond converts Reddit's "created" field, a Unix
// timestamp in seconds, into the milliseconds every other timestamp in
// this system is expressed in (execution_time, retrieve_timestamp,
// millis_to_refresh).
const millisecondsPerSecond = 1000

// postToEntity maps one Post listing child to an Entity, following the
// field defaults documented in spec.md §4.6: empty string for missing
// string fields, 0 for missing numeric fields, and the optional target
// field left nil where the source was absent.
func postToEntity(p Post) model.Entity {
	var dateTime uint64
	if p.Created != nil {
		dateTime = uint64(*p.Created * millisecondsPerSecond)
	}

	source := ""
	if p.SubredditNamePrefixed != nil {
		source = *p.SubredditNamePrefixed
	}

	title := p.Title
	ups := p.Ups

	var images []string
	if p.Preview != nil {
		for _, img := range p.Preview.Images {
			images = append(images, img.Source.URL)
		}
	}

	return model.Entity{
		NetworkID:       p.ID,
		EntityType:      model.EntityPost,
		DateTime:        dateTime,
		Source:          source,
		SourceFollowers: p.SubredditSubscribers,
		AuthorID:        p.AuthorFullname,
		AuthorName:      p.Author,
		Title:           &title,
		Content:         p.SelfText,
		Rating:          &ups,
		Images:          images,
		SocialNetwork:   model.Reddit,
	}
}

// commentToEntity maps one Comment listing child to an Entity, per the
// same default rules as postToEntity.
func commentToEntity(c Comment) model.Entity {
	var dateTime uint64
	if c.Created != nil {
		dateTime = uint64(*c.Created * millisecondsPerSecond)
	}

	source := ""
	if c.SubredditNamePrefixed != nil {
		source = *c.SubredditNamePrefixed
	}

	score := c.Score

	return model.Entity{
		NetworkID:     c.ID,
		EntityType:    model.EntityComment,
		DateTime:      dateTime,
		Source:        source,
		AuthorID:      c.AuthorFullname,
		AuthorName:    c.Author,
		Content:       c.Body,
		Rating:        &score,
		Images:        nil,
		SocialNetwork: model.Reddit,
	}
}

// ThreadEntities maps every child post in a ThreadPage to an Entity.
func ThreadEntities(page ThreadPage) []model.Entity {
	entities := make([]model.Entity, 0, len(page.Posts.Data.Children))
	for _, child := range page.Posts.Data.Children {
		entities = append(entities, postToEntity(child.Data))
	}
	return entities
}

// CommentEntities maps every child comment in a CommentPage to an
// Entity. The accompanying post listing carries no new information —
// it is the same post the originating Post task already describes —
// so only comments are transformed.
func CommentEntities(page CommentPage) []model.Entity {
	entities := make([]model.Entity, 0, len(page.Comments.Data.Children))
	for _, child := range page.Comments.Data.Children {
		entities = append(entities, commentToEntity(child.Data))
	}
	return entities
}
