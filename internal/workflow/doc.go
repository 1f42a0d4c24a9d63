// Package workflow sequences one work item through the pipeline: transcribe,
// locate, draft, package, publish, cleanup. Status transitions are persisted
// to the ledger so an interrupted run resumes from its last checkpoint.
package workflow
