// Package redis implements the task broker and result store on Redis.
//
// Queues are lists: producers LPUSH, workers BLMOVE the oldest message into a
// per-queue processing list and LREM it on acknowledgement. Rejected messages
// are moved to a per-queue dead-letter list. Job records are JSON strings
// with a retention TTL, updated under WATCH/MULTI.
package redis
