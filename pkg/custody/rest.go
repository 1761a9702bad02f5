package custody

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const defaultTimeout = 10 * time.Second

// REST queries a Cosmos SDK bank module over its LCD endpoint.
type REST struct {
	endpoint string
	client   *http.Client
}

var _ Balances = (*REST)(nil)

func NewREST(endpoint string, timeout time.Duration) *REST {
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &REST{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

type balanceResponse struct {
	Balance struct {
		Denom  string `json:"denom"`
		Amount string `json:"amount"`
	} `json:"balance"`
}

func (r *REST) Balance(ctx context.Context, address string, denom string) (uint64, error) {
	query := fmt.Sprintf("%s/cosmos/bank/v1beta1/balances/%s/by_denom?denom=%s",
		r.endpoint, url.PathEscape(address), url.QueryEscape(denom))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, query, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build balance request")
	}

	log.Debugf("querying balance %s", query)

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to query balance of %s", address)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("balance query for %s failed with status %d", address, resp.StatusCode)
	}

	out := balanceResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, errors.Wrap(err, "failed to decode balance response")
	}

	// An account that never held denom has an empty amount
	if out.Balance.Amount == "" {
		return 0, nil
	}

	amount, err := strconv.ParseUint(out.Balance.Amount, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid balance amount %q", out.Balance.Amount)
	}

	return amount, nil
}
