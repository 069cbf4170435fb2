// Package biliapi implements the remote fetch port against the chat
// service's session-sync HTTP endpoint. It owns URL assembly (including the
// boundary translation into the server's indexing), credential attachment,
// and outer-envelope decoding; pagination policy lives in collect.
package biliapi
