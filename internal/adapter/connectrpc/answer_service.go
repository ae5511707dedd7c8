package connectrpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/usecase"
)

// AnswerServiceServer exposes remote answer checking.
type AnswerServiceServer struct {
	uc usecase.AnswerUsecase
}

func NewAnswerServiceServer(uc usecase.AnswerUsecase) *AnswerServiceServer {
	return &AnswerServiceServer{uc: uc}
}

func (s *AnswerServiceServer) CheckAnswer(ctx context.Context, req *entity.CheckRequest) (*entity.CheckOutcome, error) {
	out, err := s.uc.Check(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NewAnswerServiceHandler returns the mount path and handler for the service.
func NewAnswerServiceHandler(svc *AnswerServiceServer, opts ...connect.HandlerOption) (string, http.Handler) {
	return serviceHandler(AnswerServiceName, map[string]http.Handler{
		AnswerServiceCheckAnswerProcedure: unary(AnswerServiceCheckAnswerProcedure, svc.CheckAnswer, opts...),
	})
}
