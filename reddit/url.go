package reddit

import (
	"fmt"
	"strings"

	"github.com/evalgo/mansa/model"
)

// threadVariant describes the static path and filter query fragment
// for one of the five thread-listing task variants (spec.md §4.6).
type threadVariant struct {
	path   string
	filter string
}

var threadVariants = map[model.RedditActionType]threadVariant{
	model.ActionThreadNew:        {path: "new.json", filter: ""},
	model.ActionThreadTopAllTime: {path: "top.json", filter: "t=all"},
	model.ActionThreadTopYear:    {path: "top.json", filter: "t=year"},
	model.ActionThreadTopMonth:   {path: "top.json", filter: "t=month"},
	model.ActionThreadTopWeek:    {path: "top.json", filter: "t=week"},
}

// BuildURL resolves the oauth.reddit.com request URL for params, per
// spec.md §4.6: thread variants hit "/{thread}/{path}?{filter}" with
// an optional "&after=…&limit=100" suffix; Post hits
// "/{thread}/comments/{stripped_id}?sort=top.json" with any leading
// "t3_" stripped from the id.
func BuildURL(params model.RedditParameters) (string, error) {
	if params.Action == model.ActionPost {
		id := strings.TrimPrefix(params.ID, "t3_")
		return fmt.Sprintf("https://oauth.reddit.com/%s/comments/%s?sort=top.json", params.Thread, id), nil
	}

	variant, ok := threadVariants[params.Action]
	if !ok {
		return "", fmt.Errorf("reddit: unknown thread variant %q", params.Action)
	}

	url := fmt.Sprintf("https://oauth.reddit.com/%s/%s", params.Thread, variant.path)
	if variant.filter != "" {
		url += "?" + variant.filter
	} else {
		url += "?"
	}
	if params.After != nil {
		sep := "&"
		if !strings.Contains(url, "?") || strings.HasSuffix(url, "?") {
			sep = ""
		}
		url += fmt.Sprintf("%safter=%s&limit=100", sep, *params.After)
	}
	return url, nil
}
