package custody

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/mxpv/kickstarter/pkg/effect"
	"github.com/mxpv/kickstarter/pkg/model"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Memory is an in-process bank and receipt token ledger.
// It executes effect batches on behalf of the campaign address Self.
type Memory struct {
	Self string
	// Faucet mints whatever a sender lacks to cover attached funds
	Faucet bool

	lock   sync.Mutex
	native map[string]map[string]uint64 // address -> denom -> amount
	tokens map[string]map[string]uint64 // token contract -> holder -> amount
}

var (
	_ Balances          = (*Memory)(nil)
	_ effect.Dispatcher = (*Memory)(nil)
)

func NewMemory(self string) *Memory {
	return &Memory{
		Self:   self,
		native: make(map[string]map[string]uint64),
		tokens: make(map[string]map[string]uint64),
	}
}

func (m *Memory) Balance(_ context.Context, address string, denom string) (uint64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.native[address][denom], nil
}

// TokenBalance returns how many receipt tokens of contract holder owns.
func (m *Memory) TokenBalance(contract, holder string) uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.tokens[contract][holder]
}

// TokenSupply is the sum of all balances of contract.
func (m *Memory) TokenSupply(contract string) uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	var total uint64
	for _, amount := range m.tokens[contract] {
		total += amount
	}
	return total
}

// Fund credits native funds out of thin air.
func (m *Memory) Fund(address, denom string, amount uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	return credit(m.native, address, denom, amount)
}

// TransferNative moves native funds between two accounts.
func (m *Memory) TransferNative(from, to, denom string, amount uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.native[from][denom] < amount {
		return errors.Wrapf(ErrInsufficientFunds, "%s has %d%s", from, m.native[from][denom], denom)
	}

	if err := credit(m.native, to, denom, amount); err != nil {
		return err
	}

	m.native[from][denom] -= amount
	return nil
}

// TransferToken moves receipt tokens between two holders.
func (m *Memory) TransferToken(contract, from, to string, amount uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.tokens[contract][from] < amount {
		return errors.Wrapf(ErrInsufficientFunds, "%s holds %d receipt tokens", from, m.tokens[contract][from])
	}

	if err := credit(m.tokens, contract, to, amount); err != nil {
		return err
	}

	m.tokens[contract][from] -= amount
	return nil
}

// Envelope is what a call carries into the campaign account on its own:
// native funds attached by Sender and receipt tokens handed back by Holder.
type Envelope struct {
	Sender string
	Funds  []model.Coin
	Token  string
	Holder string
	Tokens uint64
}

// Deliver moves the envelope into Self before the call executes.
// Either everything moves or nothing does.
func (m *Memory) Deliver(envelope Envelope) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	native := clone(m.native)
	tokens := clone(m.tokens)

	for _, coin := range envelope.Funds {
		if m.Faucet && native[envelope.Sender][coin.Denom] < coin.Amount {
			if err := credit(native, envelope.Sender, coin.Denom, coin.Amount-native[envelope.Sender][coin.Denom]); err != nil {
				return err
			}
		}

		if err := move(native, envelope.Sender, m.Self, coin.Denom, coin.Amount); err != nil {
			return errors.Wrapf(err, "failed to deliver %d%s", coin.Amount, coin.Denom)
		}
	}

	if envelope.Tokens > 0 {
		if err := debit(tokens, envelope.Token, envelope.Holder, envelope.Tokens); err != nil {
			return errors.Wrapf(err, "failed to return %d receipt tokens", envelope.Tokens)
		}
		if err := credit(tokens, envelope.Token, m.Self, envelope.Tokens); err != nil {
			return err
		}
	}

	m.native = native
	m.tokens = tokens
	return nil
}

// Return undoes Deliver for a call that was rejected.
func (m *Memory) Return(envelope Envelope) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	native := clone(m.native)
	tokens := clone(m.tokens)

	for _, coin := range envelope.Funds {
		if err := move(native, m.Self, envelope.Sender, coin.Denom, coin.Amount); err != nil {
			return errors.Wrapf(err, "failed to return %d%s", coin.Amount, coin.Denom)
		}
	}

	if envelope.Tokens > 0 {
		if err := debit(tokens, envelope.Token, m.Self, envelope.Tokens); err != nil {
			return errors.Wrapf(err, "failed to return %d receipt tokens", envelope.Tokens)
		}
		if err := credit(tokens, envelope.Token, envelope.Holder, envelope.Tokens); err != nil {
			return err
		}
	}

	m.native = native
	m.tokens = tokens
	return nil
}

// Dispatch applies every effect of the batch or none of them.
func (m *Memory) Dispatch(_ context.Context, batch *effect.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	native := clone(m.native)
	tokens := clone(m.tokens)

	for idx, e := range batch.Effects {
		var err error

		switch e.Kind {
		case effect.KindMint:
			err = credit(tokens, e.Contract, e.Recipient, e.Amount)
		case effect.KindBurn:
			err = debit(tokens, e.Contract, m.Self, e.Amount)
		case effect.KindSend:
			if err = debit(native, m.Self, e.Denom, e.Amount); err == nil {
				err = credit(native, e.Recipient, e.Denom, e.Amount)
			}
		default:
			err = errors.Errorf("unsupported effect kind %q", e.Kind)
		}

		if err != nil {
			return errors.Wrapf(err, "failed to apply effect %d of %q", idx, batch.ID)
		}
	}

	m.native = native
	m.tokens = tokens
	return nil
}

func credit(book map[string]map[string]uint64, outer, inner string, amount uint64) error {
	if book[outer] == nil {
		book[outer] = make(map[string]uint64)
	}

	if book[outer][inner] > math.MaxUint64-amount {
		return errors.Errorf("balance overflow for %s", outer)
	}

	book[outer][inner] += amount
	return nil
}

func debit(book map[string]map[string]uint64, outer, inner string, amount uint64) error {
	if book[outer][inner] < amount {
		return errors.Wrapf(ErrInsufficientFunds, "%s has %d, needs %d", outer, book[outer][inner], amount)
	}

	book[outer][inner] -= amount
	return nil
}

// move transfers native funds of denom between two addresses.
func move(book map[string]map[string]uint64, from, to, denom string, amount uint64) error {
	if err := debit(book, from, denom, amount); err != nil {
		return err
	}
	return credit(book, to, denom, amount)
}

func clone(book map[string]map[string]uint64) map[string]map[string]uint64 {
	out := make(map[string]map[string]uint64, len(book))
	for outer, balances := range book {
		inner := make(map[string]uint64, len(balances))
		for key, amount := range balances {
			inner[key] = amount
		}
		out[outer] = inner
	}
	return out
}
