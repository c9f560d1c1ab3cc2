// Package request defines the on-wire request envelope shared by the API
// stage and every InputPlugin.
package request

import (
	"encoding/json"

	"github.com/timour/amqprpc/core"
)

// Header carries the action name, the opaque bearer token, and a mutable
// side channel that plugins use to inject identity (e.g. user_id).
//
// Extra is only ever mutated by plugins; handlers see the post-plugin
// header.
type Header struct {
	Action string            `json:"action"`
	Token  string            `json:"token"`
	Extra  map[string]string `json:"extra"`
}

// NewHeader builds a Header with an initialized, empty Extra map.
func NewHeader(action, token string) Header {
	return Header{Action: action, Token: token, Extra: make(map[string]string)}
}

// AddExtra sets a key in the header's side channel, returning the previous
// value if one was present.
func (h *Header) AddExtra(key, value string) (string, bool) {
	if h.Extra == nil {
		h.Extra = make(map[string]string)
	}
	previous, ok := h.Extra[key]
	h.Extra[key] = value
	return previous, ok
}

// HasExtra reports whether key is present in the side channel.
func (h *Header) HasExtra(key string) bool {
	_, ok := h.Extra[key]
	return ok
}

// GetExtra returns the value stored under key, if any.
func (h *Header) GetExtra(key string) (string, bool) {
	value, ok := h.Extra[key]
	return value, ok
}

// Request is the deserialized body of an AMQP delivery: an action
// selector plus an opaque, per-action JSON payload.
type Request struct {
	Header  Header          `json:"header"`
	Payload json.RawMessage `json:"payload"`
}

// New builds a Request from a header and an already-marshaled payload.
func New(header Header, payload json.RawMessage) Request {
	return Request{Header: header, Payload: payload}
}

// ExtractPayload deserializes the request payload into T, returning a
// RequestError-kind failure on a malformed payload.
func ExtractPayload[T any](r Request) (T, error) {
	var payload T
	if err := json.Unmarshal(r.Payload, &payload); err != nil {
		var zero T
		return zero, core.Newf(core.ErrorKindRequest, "invalid payload: %s", err)
	}
	return payload, nil
}

// ExtractUserID reads the user_id header extra written by the
// authenticator sub-plugin.
func ExtractUserID(r Request) (string, bool) {
	return r.Header.GetExtra("user_id")
}
