// Package transcriber drives the external batch transcription tool: it
// primes the tool's Excel task sheet with the work item URL, launches the
// tool as a subprocess with streamed output capture, and polls the sheet's
// status cell until the job reports done.
package transcriber
