package task

import (
	"fmt"
	"strings"
)

const namePrefix = "tasks."

// routes maps a task namespace to its queue. Unlisted namespaces have no
// queue; routing fails closed instead of falling back to a default.
var routes = map[string]Queue{
	"ai":           QueueAI,
	"notification": QueueNotification,
}

// Namespace returns the namespace segment of a task name, e.g. "ai" for
// "tasks.ai.optimize_palace_layout". It is empty for malformed names.
func (n Name) Namespace() string {
	rest, ok := strings.CutPrefix(string(n), namePrefix)
	if !ok {
		return ""
	}
	ns, op, ok := strings.Cut(rest, ".")
	if !ok || ns == "" || op == "" {
		return ""
	}
	return ns
}

// QueueFor returns the queue a task name routes to according to the fixed
// routing table.
func QueueFor(name Name) (Queue, error) {
	q, ok := routes[name.Namespace()]
	if !ok {
		return "", fmt.Errorf("%w: no route for %q", ErrUnknownTask, name)
	}
	return q, nil
}
