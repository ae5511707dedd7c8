package connectrpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/repository"
	"github.com/eslsoft/phrasedrill/internal/usecase"
)

type IDRequest struct {
	ID int64 `json:"id"`
}

type Empty struct{}

type ListPhrasesRequest struct {
	Notebook string `json:"notebook,omitempty"`
	Filter   string `json:"filter,omitempty"`
	OrderBy  string `json:"order_by,omitempty"`
	PageNo   int32  `json:"page_no,omitempty"`
	PageSize int32  `json:"page_size,omitempty"`
}

type ListPhrasesResponse struct {
	Phrases []*entity.Phrase `json:"phrases"`
	Total   int64            `json:"total"`
}

// PhraseServiceServer exposes the phrase store.
type PhraseServiceServer struct {
	uc usecase.PhraseUsecase
}

func NewPhraseServiceServer(uc usecase.PhraseUsecase) *PhraseServiceServer {
	return &PhraseServiceServer{uc: uc}
}

func (s *PhraseServiceServer) CreatePhrase(ctx context.Context, req *entity.Phrase) (*entity.Phrase, error) {
	return s.uc.Create(ctx, req)
}

func (s *PhraseServiceServer) GetPhrase(ctx context.Context, req *IDRequest) (*entity.Phrase, error) {
	return s.uc.Get(ctx, req.ID)
}

func (s *PhraseServiceServer) ListPhrases(ctx context.Context, req *ListPhrasesRequest) (*ListPhrasesResponse, error) {
	items, total, err := s.uc.List(ctx, &repository.ListPhraseQuery{
		Pagination:  convertPagination(req.PageNo, req.PageSize),
		FilterOrder: repository.FilterOrder{Filter: req.Filter, OrderBy: req.OrderBy},
		Notebook:    req.Notebook,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.Phrase{}
	}
	return &ListPhrasesResponse{Phrases: items, Total: total}, nil
}

func (s *PhraseServiceServer) DeletePhrase(ctx context.Context, req *IDRequest) (*Empty, error) {
	if err := s.uc.Delete(ctx, req.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func NewPhraseServiceHandler(svc *PhraseServiceServer, opts ...connect.HandlerOption) (string, http.Handler) {
	return serviceHandler(PhraseServiceName, map[string]http.Handler{
		PhraseServiceCreatePhraseProcedure: unary(PhraseServiceCreatePhraseProcedure, svc.CreatePhrase, opts...),
		PhraseServiceGetPhraseProcedure:    unary(PhraseServiceGetPhraseProcedure, svc.GetPhrase, opts...),
		PhraseServiceListPhrasesProcedure:  unary(PhraseServiceListPhrasesProcedure, svc.ListPhrases, opts...),
		PhraseServiceDeletePhraseProcedure: unary(PhraseServiceDeletePhraseProcedure, svc.DeletePhrase, opts...),
	})
}
