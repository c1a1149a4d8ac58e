package reddit

import (
	"testing"

	"github.com/evalgo/mansa/model"
)

func TestBuildURLThreadNewNoAfter(t *testing.T) {
	url, err := BuildURL(model.RedditParameters{Action: model.ActionThreadNew, Thread: "golang"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://oauth.reddit.com/golang/new.json?"
	if url != want {
		t.Fatalf("got %q, want %q", url, want)
	}
}

func TestBuildURLThreadTopWithAfter(t *testing.T) {
	after := "t3_abc"
	url, err := BuildURL(model.RedditParameters{
		Action: model.ActionThreadTopWeek,
		Thread: "golang",
		After:  &after,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://oauth.reddit.com/golang/top.json?t=week&after=t3_abc&limit=100"
	if url != want {
		t.Fatalf("got %q, want %q", url, want)
	}
}

func TestBuildURLPostStripsT3Prefix(t *testing.T) {
	url, err := BuildURL(model.RedditParameters{
		Action: model.ActionPost,
		Thread: "golang",
		ID:     "t3_xyz123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://oauth.reddit.com/golang/comments/xyz123?sort=top.json"
	if url != want {
		t.Fatalf("got %q, want %q", url, want)
	}
}

func TestBuildURLPostWithoutT3Prefix(t *testing.T) {
	url, err := BuildURL(model.RedditParameters{
		Action: model.ActionPost,
		Thread: "golang",
		ID:     "xyz123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://oauth.reddit.com/golang/comments/xyz123?sort=top.json"
	if url != want {
		t.Fatalf("got %q, want %q", url, want)
	}
}

func TestBuildURLAllThreadVariants(t *testing.T) {
	cases := map[model.RedditActionType]string{
		model.ActionThreadTopAllTime: "https://oauth.reddit.com/golang/top.json?t=all",
		model.ActionThreadTopYear:    "https://oauth.reddit.com/golang/top.json?t=year",
		model.ActionThreadTopMonth:   "https://oauth.reddit.com/golang/top.json?t=month",
		model.ActionThreadTopWeek:    "https://oauth.reddit.com/golang/top.json?t=week",
	}
	for action, want := range cases {
		got, err := BuildURL(model.RedditParameters{Action: action, Thread: "golang"})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", action, err)
		}
		if got != want {
			t.Fatalf("%s: got %q, want %q", action, got, want)
		}
	}
}
