package model

import "encoding/json"

// PublicMessage is the envelope for unauthenticated traffic on /public.
// What selects the operation; Data is an opaque payload interpreted by the
// domain dispatch.
type PublicMessage struct {
	What string          `json:"what"`
	Data json.RawMessage `json:"data"`
}

// UserMessage is the envelope for authenticated traffic on /user. Same
// shape as PublicMessage; the difference is that a resolved identity
// accompanies the call.
type UserMessage struct {
	What string          `json:"what"`
	Data json.RawMessage `json:"data"`
}

// ServerResponse is the single reply shape for both endpoints. Every
// request produces exactly one ServerResponse over HTTP 200; failures are
// signalled only through the What tag, never through the transport status.
type ServerResponse struct {
	What    string `json:"what"`
	Content any    `json:"content"`
}

// WhatServerError tags a ServerResponse carrying an error description in
// its content field.
const WhatServerError = "server error"
