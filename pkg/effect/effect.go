// Package effect describes outbound instructions produced by a successful call.
// Effects are data: they are executed by a Dispatcher only after state is committed.
package effect

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mxpv/kickstarter/pkg/model"
)

type Kind string

const (
	// KindMint mints receipt tokens to Recipient
	KindMint = Kind("mint")
	// KindBurn burns receipt tokens held by the campaign
	KindBurn = Kind("burn")
	// KindSend transfers native funds to Recipient
	KindSend = Kind("send")
)

type Effect struct {
	Kind      Kind   `json:"kind"`
	Contract  string `json:"contract,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Amount    uint64 `json:"amount"`
	Denom     string `json:"denom,omitempty"`
}

func Mint(contract, recipient string, amount uint64) Effect {
	return Effect{Kind: KindMint, Contract: contract, Recipient: recipient, Amount: amount}
}

func Burn(contract string, amount uint64) Effect {
	return Effect{Kind: KindBurn, Contract: contract, Amount: amount}
}

func Send(recipient string, amount uint64, denom string) Effect {
	return Effect{Kind: KindSend, Recipient: recipient, Amount: amount, Denom: denom}
}

type mintMsg struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type burnMsg struct {
	Amount string `json:"amount"`
}

type sendMsg struct {
	ToAddress string       `json:"to_address"`
	Amount    []coinAmount `json:"amount"`
}

type coinAmount struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Payload renders the message the receiving service expects.
// Token amounts are encoded as decimal strings.
func (e Effect) Payload() ([]byte, error) {
	amount := strconv.FormatUint(e.Amount, 10)

	var msg interface{}
	switch e.Kind {
	case KindMint:
		msg = map[string]mintMsg{"mint": {Recipient: e.Recipient, Amount: amount}}
	case KindBurn:
		msg = map[string]burnMsg{"burn": {Amount: amount}}
	case KindSend:
		msg = map[string]sendMsg{"send": {
			ToAddress: e.Recipient,
			Amount:    []coinAmount{{Denom: e.Denom, Amount: amount}},
		}}
	default:
		return nil, model.NewError(model.CodeSerializationFailed, "unsupported effect kind "+strconv.Quote(string(e.Kind)))
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, model.WrapError(model.CodeSerializationFailed, "failed to encode effect", err)
	}

	return data, nil
}

// Batch is the unit handed to a Dispatcher: all effects of one committed call.
type Batch struct {
	ID      string   `json:"id"`
	Action  string   `json:"action"`
	Effects []Effect `json:"effects"`
}

// Dispatcher executes effects on behalf of the host.
type Dispatcher interface {
	Dispatch(ctx context.Context, batch *Batch) error
}

// Validate renders every payload so a malformed batch is rejected before dispatch.
func (b *Batch) Validate() error {
	for idx, e := range b.Effects {
		if _, err := e.Payload(); err != nil {
			return errors.Wrapf(err, "effect %d of %q", idx, b.ID)
		}
	}
	return nil
}
