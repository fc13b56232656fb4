// Package migrations holds the schema history. Each file registers its
// change with migration.Register from init, so importing this package
// for the side effect (the CLI does) makes every migration known before
// any command runs.
package migrations
