//go:generate mockgen -source=deps.go -destination=deps_mock_test.go -package=server

package server

import (
	"context"

	"github.com/mxpv/kickstarter/pkg/campaign"
	"github.com/mxpv/kickstarter/pkg/custody"
	"github.com/mxpv/kickstarter/pkg/effect"
)

type controller interface {
	Execute(ctx context.Context, info campaign.MessageInfo, req campaign.Request) (*campaign.Response, error)
	Query(ctx context.Context, query campaign.Query) (interface{}, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, batch *effect.Batch) error
}

type statsService interface {
	Record(metric, subject string, amount uint64) (int64, error)
	Top(metric string) (map[string]int64, error)
}

type sandbox interface {
	Deliver(envelope custody.Envelope) error
	Return(envelope custody.Envelope) error
}
