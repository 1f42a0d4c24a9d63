// Package publisher automates the creator-platform upload flow with a real
// browser. The publish attempt is a strictly forward state machine: session
// start, login check, tab selection, media upload, field fill, submit. Any
// step may fail into a terminal state, after which a screenshot and the page
// text are captured for the operator.
package publisher
