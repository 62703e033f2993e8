// Package handlers implements the background operations served by the
// worker: memory suggestions and layout scoring on the AI queue, and welcome
// emails, palace notifications and session cleanup on the notification queue.
//
// The suggestion and layout operations produce randomized placeholder data.
package handlers
