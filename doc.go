// Package main provides the entry point for the noterelay service.
// It runs a web service using the Fiber framework that accepts normalized
// chat messages over a webhook, forwards them as notes to a Blinko
// instance through its REST API, and lets each chat user manage a fixed
// set of personal settings. The service uses gorm for data persistence.
package main
