// Package record writes the durable per-item content record: the generated
// publishing copy, artifact locations, and manual posting instructions kept
// as the fallback when automation cannot finish a publish.
package record
