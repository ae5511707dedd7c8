package connectrpc

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/eslsoft/phrasedrill/internal/adapter/mapping"
	"github.com/eslsoft/phrasedrill/internal/repository"
)

const _maxPageSize = 1000

func convertPagination(pageNo, pageSize int32) repository.Pagination {
	if pageNo <= 0 {
		pageNo = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > _maxPageSize {
		pageSize = _maxPageSize
	}
	return repository.Pagination{PageNo: pageNo, PageSize: pageSize}
}

// unary adapts a plain method to a Connect handler speaking JSON.
func unary[Req, Res any](procedure string, fn func(context.Context, *Req) (*Res, error), opts ...connect.HandlerOption) http.Handler {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	return connect.NewUnaryHandler(procedure, func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
		if req.Msg == nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request body required"))
		}
		res, err := fn(ctx, req.Msg)
		if err != nil {
			return nil, mapping.ToConnectError(err)
		}
		return connect.NewResponse(res), nil
	}, opts...)
}

// serviceHandler routes a service's procedures under its path prefix.
func serviceHandler(service string, procedures map[string]http.Handler) (string, http.Handler) {
	return "/" + service + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := procedures[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
