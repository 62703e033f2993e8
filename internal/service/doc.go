// Package service contains the application use cases: user accounts and
// profiles, memory palaces with their rooms and items, and the submission of
// background jobs that accompany them.
//
// Services receive stores and the task enqueuer through constructor
// injection, apply transactional boundaries with store.RunInTransaction and
// enforce ownership before touching another user's data.
package service
