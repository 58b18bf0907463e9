package task

// State is the lifecycle state of a task on the board
type State string

const (
	StateNotCompleted State = "not_completed"
	StatePending      State = "pending"
	StateCompleted    State = "completed"
)

// Task represents a single chore row merged with its board state.
// Name is the unique key within a list and is stable across refreshes.
// Extra carries sheet columns the board does not interpret (notes,
// screentime, whatever the sheet owner adds) verbatim through each merge.
type Task struct {
	Name          string            `json:"task"`
	AssignedTo    string            `json:"assigned_to"`
	CronExpr      string            `json:"cron_frequency,omitempty"` // empty = one-time task
	LastCompleted string            `json:"last_completed,omitempty"` // ISO-8601, empty = never
	State         State             `json:"state"`
	Visible       bool              `json:"visible"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Clone returns a deep copy of the task
func (t *Task) Clone() *Task {
	c := *t
	if t.Extra != nil {
		c.Extra = make(map[string]string, len(t.Extra))
		for k, v := range t.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// List is one published snapshot of the board, ordered as fetched
type List []*Task

// Find returns the first task with the given name, or nil
func (l List) Find(name string) *Task {
	for _, t := range l {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Clone deep-copies the snapshot so a mutation never touches a
// previously published list
func (l List) Clone() List {
	out := make(List, len(l))
	for i, t := range l {
		out[i] = t.Clone()
	}
	return out
}
