package connectrpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/usecase/learn"
)

// AnswerClient calls a remote AnswerService. It satisfies learn.RemoteChecker.
type AnswerClient struct {
	check *connect.Client[entity.CheckRequest, entity.CheckOutcome]
}

var _ learn.RemoteChecker = (*AnswerClient)(nil)

func NewAnswerClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AnswerClient {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &AnswerClient{
		check: connect.NewClient[entity.CheckRequest, entity.CheckOutcome](
			httpClient,
			strings.TrimRight(baseURL, "/")+AnswerServiceCheckAnswerProcedure,
			opts...,
		),
	}
}

func (c *AnswerClient) CheckAnswer(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error) {
	resp, err := c.check.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		return entity.CheckOutcome{}, err
	}
	return *resp.Msg, nil
}
