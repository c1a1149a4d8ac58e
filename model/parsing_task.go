package model

// TaskStatus is the lifecycle state of a ParsingTask. Processed is
// terminal; New<->Processing is the only reversible edge.
type TaskStatus string

const (
	StatusNew        TaskStatus = "New"
	StatusProcessing TaskStatus = "Processing"
	StatusProcessed  TaskStatus = "Processed"
)

// RedditActionType names the variant of RedditParameters carried by a
// task, used as the action_type discriminant persisted alongside the
// task for index-friendly grouping.
type RedditActionType string

const (
	ActionThreadNew          RedditActionType = "ThreadNew"
	ActionThreadTopAllTime   RedditActionType = "ThreadTopAllTime"
	ActionThreadTopYear      RedditActionType = "ThreadTopYear"
	ActionThreadTopMonth     RedditActionType = "ThreadTopMonth"
	ActionThreadTopWeek      RedditActionType = "ThreadTopWeek"
	ActionPost               RedditActionType = "Post"
)

// RedditThreadVariants lists the five thread-listing variants that an
// "All" seed expands into, in the order spec.md §4.6 enumerates them.
var RedditThreadVariants = []RedditActionType{
	ActionThreadNew,
	ActionThreadTopAllTime,
	ActionThreadTopYear,
	ActionThreadTopMonth,
	ActionThreadTopWeek,
}

// RedditParameters is the tagged union over Reddit task parameters
// (spec.md §3). Exactly one of the Thread* fields is meaningful,
// selected by Action; Post tasks use ID/UpdateNumber instead of After.
type RedditParameters struct {
	Action       RedditActionType `json:"action_type"`
	Thread       string           `json:"thread"`
	After        *string          `json:"after,omitempty"`
	ID           string           `json:"id,omitempty"`
	UpdateNumber uint64           `json:"update_number,omitempty"`
}

// IsThreadVariant reports whether p is one of the five listing variants
// (as opposed to Post).
func (p RedditParameters) IsThreadVariant() bool {
	return p.Action != ActionPost
}

// WithAfter returns a copy of p with After replaced, used when spawning
// the pagination follow-up for a thread listing.
func (p RedditParameters) WithAfter(after string) RedditParameters {
	p.After = &after
	return p
}

// ParsingTask is the persistent unit of work described in spec.md §3.
// ID is empty until the task has been persisted by the store.
type ParsingTask struct {
	ID            string           `json:"id,omitempty"`
	ExecutionTime uint64           `json:"execution_time"`
	Parameters    RedditParameters `json:"parameters"`
	ActionType    string           `json:"action_type"`
	SocialNetwork SocialNetworkTag `json:"social_network"`
	Status        TaskStatus       `json:"status"`
}
