package store

import (
	"testing"

	"github.com/evalgo/mansa/model"
)

func TestTaskDocRoundTrip(t *testing.T) {
	after := "t3_xyz"
	task := model.ParsingTask{
		ID:            "abc",
		ExecutionTime: 1000,
		Parameters: model.RedditParameters{
			Action: model.ActionThreadNew,
			Thread: "golang",
			After:  &after,
		},
		ActionType:    string(model.ActionThreadNew),
		SocialNetwork: model.Reddit,
		Status:        model.StatusNew,
	}

	doc := toTaskDoc(task)
	back := doc.toModel()

	if back.ID != task.ID || back.ExecutionTime != task.ExecutionTime ||
		back.ActionType != task.ActionType || back.SocialNetwork != task.SocialNetwork ||
		back.Status != task.Status {
		t.Fatalf("round trip lost fields: got %+v, want %+v", back, task)
	}
	if back.Parameters.Thread != task.Parameters.Thread || *back.Parameters.After != after {
		t.Fatal("parameters did not round trip")
	}
}
