package connectrpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/repository"
	"github.com/eslsoft/phrasedrill/internal/usecase"
	"github.com/eslsoft/phrasedrill/internal/usecase/learn"
)

type StartSessionRequest struct {
	Direction       string  `json:"direction,omitempty"`
	Input           string  `json:"input,omitempty"`
	UseContainsMode bool    `json:"use_contains_mode,omitempty"`
	Shuffle         bool    `json:"shuffle,omitempty"`
	AllowAmend      bool    `json:"allow_amend,omitempty"`
	PhraseIDs       []int64 `json:"phrase_ids,omitempty"`
	Notebook        string  `json:"notebook,omitempty"`
	Filter          string  `json:"filter,omitempty"`
	OrderBy         string  `json:"order_by,omitempty"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

func (r *SessionRequest) GetSessionID() string { return r.SessionID }

type SetAnswerRequest struct {
	SessionID string `json:"session_id"`
	PhraseID  int64  `json:"phrase_id"`
	Value     string `json:"value"`
}

func (r *SetAnswerRequest) GetSessionID() string { return r.SessionID }

type SelectTokenRequest struct {
	SessionID string `json:"session_id"`
	PhraseID  int64  `json:"phrase_id"`
	Token     string `json:"token"`
}

func (r *SelectTokenRequest) GetSessionID() string { return r.SessionID }

type RemoveTokenRequest struct {
	SessionID string `json:"session_id"`
	PhraseID  int64  `json:"phrase_id"`
	Index     int    `json:"index"`
}

func (r *RemoveTokenRequest) GetSessionID() string { return r.SessionID }

type ReopenRequest struct {
	SessionID string `json:"session_id"`
	PhraseID  int64  `json:"phrase_id"`
}

func (r *ReopenRequest) GetSessionID() string { return r.SessionID }

// SessionServiceServer hosts learn sessions over Connect.
type SessionServiceServer struct {
	uc usecase.SessionUsecase
}

func NewSessionServiceServer(uc usecase.SessionUsecase) *SessionServiceServer {
	return &SessionServiceServer{uc: uc}
}

func (s *SessionServiceServer) Start(ctx context.Context, req *StartSessionRequest) (*usecase.SessionView, error) {
	direction, err := entity.ParseDirection(req.Direction)
	if err != nil {
		return nil, err
	}
	input, err := entity.ParseInputMode(req.Input)
	if err != nil {
		return nil, err
	}
	return s.uc.Start(ctx, usecase.StartSessionInput{
		Settings: learn.Settings{
			Direction:       direction,
			Input:           input,
			UseContainsMode: req.UseContainsMode,
			Shuffle:         req.Shuffle,
			AllowAmend:      req.AllowAmend,
		},
		PhraseIDs: req.PhraseIDs,
		Query: repository.ListPhraseQuery{
			FilterOrder: repository.FilterOrder{Filter: req.Filter, OrderBy: req.OrderBy},
			Notebook:    req.Notebook,
		},
	})
}

func (s *SessionServiceServer) Get(ctx context.Context, req *SessionRequest) (*usecase.SessionView, error) {
	return s.uc.Get(ctx, req.SessionID)
}

func (s *SessionServiceServer) SetAnswer(ctx context.Context, req *SetAnswerRequest) (*usecase.SessionView, error) {
	return s.uc.SetAnswer(ctx, req.SessionID, req.PhraseID, req.Value)
}

func (s *SessionServiceServer) SelectToken(ctx context.Context, req *SelectTokenRequest) (*usecase.SessionView, error) {
	return s.uc.SelectToken(ctx, req.SessionID, req.PhraseID, req.Token)
}

func (s *SessionServiceServer) RemoveToken(ctx context.Context, req *RemoveTokenRequest) (*usecase.SessionView, error) {
	return s.uc.RemoveToken(ctx, req.SessionID, req.PhraseID, req.Index)
}

func (s *SessionServiceServer) Check(ctx context.Context, req *SessionRequest) (*usecase.SessionView, error) {
	return s.uc.Check(ctx, req.SessionID)
}

func (s *SessionServiceServer) Confirm(ctx context.Context, req *SessionRequest) (*usecase.SessionView, error) {
	return s.uc.Confirm(ctx, req.SessionID)
}

func (s *SessionServiceServer) Skip(ctx context.Context, req *SessionRequest) (*usecase.SessionView, error) {
	return s.uc.Skip(ctx, req.SessionID)
}

func (s *SessionServiceServer) Next(ctx context.Context, req *SessionRequest) (*usecase.SessionView, error) {
	return s.uc.Next(ctx, req.SessionID)
}

func (s *SessionServiceServer) Reopen(ctx context.Context, req *ReopenRequest) (*usecase.SessionView, error) {
	return s.uc.Reopen(ctx, req.SessionID, req.PhraseID)
}

func (s *SessionServiceServer) Continue(ctx context.Context, req *SessionRequest) (*usecase.SessionView, error) {
	return s.uc.Continue(ctx, req.SessionID)
}

func (s *SessionServiceServer) Finish(ctx context.Context, req *SessionRequest) (*usecase.SessionView, error) {
	return s.uc.Finish(ctx, req.SessionID)
}

func NewSessionServiceHandler(svc *SessionServiceServer, opts ...connect.HandlerOption) (string, http.Handler) {
	return serviceHandler(SessionServiceName, map[string]http.Handler{
		SessionServiceStartProcedure:       unary(SessionServiceStartProcedure, svc.Start, opts...),
		SessionServiceGetProcedure:         unary(SessionServiceGetProcedure, svc.Get, opts...),
		SessionServiceSetAnswerProcedure:   unary(SessionServiceSetAnswerProcedure, svc.SetAnswer, opts...),
		SessionServiceSelectTokenProcedure: unary(SessionServiceSelectTokenProcedure, svc.SelectToken, opts...),
		SessionServiceRemoveTokenProcedure: unary(SessionServiceRemoveTokenProcedure, svc.RemoveToken, opts...),
		SessionServiceCheckProcedure:       unary(SessionServiceCheckProcedure, svc.Check, opts...),
		SessionServiceConfirmProcedure:     unary(SessionServiceConfirmProcedure, svc.Confirm, opts...),
		SessionServiceSkipProcedure:        unary(SessionServiceSkipProcedure, svc.Skip, opts...),
		SessionServiceNextProcedure:        unary(SessionServiceNextProcedure, svc.Next, opts...),
		SessionServiceReopenProcedure:      unary(SessionServiceReopenProcedure, svc.Reopen, opts...),
		SessionServiceContinueProcedure:    unary(SessionServiceContinueProcedure, svc.Continue, opts...),
		SessionServiceFinishProcedure:      unary(SessionServiceFinishProcedure, svc.Finish, opts...),
	})
}
