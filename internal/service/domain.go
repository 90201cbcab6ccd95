package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zknotes/zknotes-go/internal/model"
	"github.com/zknotes/zknotes-go/internal/session"
)

// DomainService interprets the payload of decoded message envelopes. It is
// the backend behind the /public and /user dispatchers.
type DomainService struct {
	auth *AuthService
	reg  *RegistrationService
}

// NewDomainService creates a new DomainService.
func NewDomainService(auth *AuthService, reg *RegistrationService) *DomainService {
	return &DomainService{auth: auth, reg: reg}
}

type loginRequest struct {
	UID string `json:"uid"`
	Pwd string `json:"pwd"`
}

type signupRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Pwd   string `json:"pwd"`
}

// HandlePublic dispatches an unauthenticated envelope.
func (s *DomainService) HandlePublic(ctx context.Context, sess *session.Session, msg model.PublicMessage) (model.ServerResponse, error) {
	switch msg.What {
	case "login":
		var req loginRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return model.ServerResponse{}, fmt.Errorf("decoding login data: %w", err)
		}
		login, err := s.auth.Login(ctx, sess, req.UID, req.Pwd)
		if err != nil {
			return model.ServerResponse{}, err
		}
		return model.ServerResponse{What: "logged in", Content: login}, nil

	case "register":
		var req signupRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return model.ServerResponse{}, fmt.Errorf("decoding register data: %w", err)
		}
		if err := s.reg.Signup(ctx, req.UID, req.Email, req.Pwd); err != nil {
			return model.ServerResponse{}, err
		}
		return model.ServerResponse{What: "registration sent", Content: nil}, nil

	default:
		return model.ServerResponse{}, fmt.Errorf("unknown message: %q", msg.What)
	}
}

// HandleUser dispatches an authenticated envelope. login is the identity
// the dispatcher resolved for this session.
func (s *DomainService) HandleUser(ctx context.Context, sess *session.Session, login model.LoginData, msg model.UserMessage) (model.ServerResponse, error) {
	switch msg.What {
	case "logindata":
		return model.ServerResponse{What: "logindata", Content: login}, nil

	case "logout":
		if err := s.auth.Logout(ctx, sess); err != nil {
			return model.ServerResponse{}, err
		}
		return model.ServerResponse{What: "logged out", Content: nil}, nil

	default:
		return model.ServerResponse{}, fmt.Errorf("unknown message: %q", msg.What)
	}
}
