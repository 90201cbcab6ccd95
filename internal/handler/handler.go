package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zknotes/zknotes-go/internal/model"
	"github.com/zknotes/zknotes-go/internal/session"
)

// Domain interprets the payload of decoded message envelopes. Its
// internals (note storage, search, command dispatch) are outside this
// layer; the dispatcher only needs these two entry points.
type Domain interface {
	HandlePublic(ctx context.Context, sess *session.Session, msg model.PublicMessage) (model.ServerResponse, error)
	HandleUser(ctx context.Context, sess *session.Session, login model.LoginData, msg model.UserMessage) (model.ServerResponse, error)
}

// IdentityResolver resolves a request's session to a login identity, or
// (nil, nil) for anonymous callers.
type IdentityResolver interface {
	LoginData(ctx context.Context, sess *session.Session) (*model.LoginData, error)
}

// writeResponse emits the uniform reply envelope. The transport status on
// /public and /user is always 200; failure travels only in the What tag.
func writeResponse(w http.ResponseWriter, resp model.ServerResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func writeServerError(w http.ResponseWriter, err error) {
	writeResponse(w, model.ServerResponse{What: model.WhatServerError, Content: err.Error()})
}
