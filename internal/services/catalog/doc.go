// Package catalog reads and prunes the remote playlist that feeds the
// pipeline, using an OAuth token persisted on disk and refreshed in place.
package catalog
