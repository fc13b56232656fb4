// Package main provides the agriconnect CLI.
//
// Build it from the repo root:
//
//	go build -o agriconnect ./cmd/agriconnect
//
// Day-to-day commands:
//
//	agriconnect serve           # start HTTP + gRPC server
//	agriconnect migrate         # run migrations
//	agriconnect migrate:rollback
//	agriconnect migrate:status
//	agriconnect seed            # seed demo data
//	agriconnect route:list      # list API routes
//	agriconnect queue:work      # run queue workers standalone
//	agriconnect schedule:run    # run the scheduler standalone
//
// serve already starts workers and the scheduler in-process; the standalone
// worker commands exist for deployments that scale them separately.
package main
