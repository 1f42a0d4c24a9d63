// Package services holds cross-cutting helpers shared by pipeline stages:
// the sentinel error taxonomy with stage-aware wrapping, and context
// annotations used to thread item and correlation identity into logs.
package services
