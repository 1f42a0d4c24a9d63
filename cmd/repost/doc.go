// Command repost drives the automated video repost pipeline: it pulls the
// next video reference from the watched playlist, runs it through the batch
// transcription tool, drafts publishing copy, and publishes the result.
package main
