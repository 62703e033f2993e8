package redis

import "github.com/phrazzld/palace-api/internal/task"

// All keys are prefixed with "palace:" to avoid collisions.
const keyPrefix = "palace:"

// queueKey returns the pending list of a queue: palace:queue:{name}
func queueKey(q task.Queue) string { return keyPrefix + "queue:" + string(q) }

// processingKey returns the in-flight list of a queue: palace:queue:{name}:processing
func processingKey(q task.Queue) string { return queueKey(q) + ":processing" }

// deadKey returns the dead-letter list of a queue: palace:queue:{name}:dead
func deadKey(q task.Queue) string { return queueKey(q) + ":dead" }

// jobKey returns the record of a job: palace:job:{id}
func jobKey(id string) string { return keyPrefix + "job:" + id }
