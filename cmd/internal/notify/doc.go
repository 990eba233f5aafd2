// Package notify is the delivery collaborator: it hands each participant
// the link carrying their reveal token. The core treats delivery as
// fire-and-report; a failed send never unwinds persisted draw state.
package notify
