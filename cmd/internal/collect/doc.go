// Package collect drives the backward walk through a conversation's message
// history: it owns the sequence-number cursor, decides continuation versus
// termination per page, and paces fetches to respect the remote service.
package collect
