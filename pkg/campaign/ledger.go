package campaign

import (
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/mxpv/kickstarter/pkg/db"
	"github.com/mxpv/kickstarter/pkg/effect"
	"github.com/mxpv/kickstarter/pkg/model"
)

func (c *Controller) pledge(tx db.Tx, now time.Time, info MessageInfo, resp *Response) error {
	campaign, err := loadCampaign(tx)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(tx)
	if err != nil {
		return err
	}

	if campaign.Ended(now) {
		return model.NewError(model.CodePreconditionFailed, "campaign has ended")
	}

	coin, err := singleCoin(info.Funds)
	if err != nil {
		return err
	}

	if coin.Denom != cfg.Denom {
		return model.NewError(model.CodeValidationFailed, "invalid contribution denom")
	}

	if min := campaign.MinimumContribution; min != nil && coin.Amount < *min {
		return model.NewError(model.CodeValidationFailed, "contribution too low")
	}

	total, err := credit(tx, info.Sender, coin.Amount)
	if err != nil {
		return err
	}

	resp.addEffect(effect.Mint(cfg.TokenAddress, info.Sender, coin.Amount))
	resp.addAttribute("campaign", campaign.Name)
	resp.addAttribute("contributor", info.Sender)
	resp.addAttribute("amount", strconv.FormatUint(coin.Amount, 10))
	resp.addAttribute("total", strconv.FormatUint(total, 10))
	resp.Data = &model.Contribution{Contributor: info.Sender, Amount: total}
	return nil
}

func (c *Controller) reversePledge(tx db.Tx, info MessageInfo, req ReversePledge, resp *Response) error {
	cfg, err := loadConfig(tx)
	if err != nil {
		return err
	}

	if info.Sender != cfg.TokenAddress {
		return model.NewError(model.CodeUnauthorized, "unauthorized token")
	}

	contributor, err := c.validator.Validate(req.Sender)
	if err != nil {
		return model.WrapError(model.CodeValidationFailed, "invalid contributor address", err)
	}

	if req.Amount == 0 {
		return model.NewError(model.CodeValidationFailed, "no funds")
	}

	// Receipt tokens were handed over to the campaign, destroy them first
	resp.addEffect(effect.Burn(cfg.TokenAddress, req.Amount))

	remaining, err := debit(tx, contributor, req.Amount)
	if err != nil {
		return err
	}

	resp.addEffect(effect.Send(contributor, req.Amount, cfg.Denom))
	resp.addAttribute("contributor", contributor)
	resp.addAttribute("amount", strconv.FormatUint(req.Amount, 10))
	resp.addAttribute("remaining", strconv.FormatUint(remaining, 10))
	resp.Data = &model.Contribution{Contributor: contributor, Amount: remaining}
	return nil
}

func singleCoin(funds []model.Coin) (model.Coin, error) {
	switch len(funds) {
	case 0:
		return model.Coin{}, model.NewError(model.CodeValidationFailed, "no funds")
	case 1:
	default:
		return model.Coin{}, model.NewError(model.CodeValidationFailed, "multiple denoms sent")
	}

	if funds[0].Amount == 0 {
		return model.Coin{}, model.NewError(model.CodeValidationFailed, "no funds")
	}

	return funds[0], nil
}

// credit adds amount to the ledger entry of contributor and returns the new total.
func credit(tx db.Tx, contributor string, amount uint64) (uint64, error) {
	current, err := tx.GetContribution(contributor)
	if err != nil && err != model.ErrNotFound {
		return 0, errors.Wrapf(err, "failed to query contribution of %q", contributor)
	}

	if current > math.MaxUint64-amount {
		return 0, model.NewError(model.CodeInvalidAmount, "contribution overflow")
	}

	total := current + amount
	if err := tx.SaveContribution(contributor, total); err != nil {
		return 0, errors.Wrapf(err, "failed to save contribution of %q", contributor)
	}

	return total, nil
}

// debit subtracts amount from the ledger entry of contributor, the entry is
// removed once it drops to zero.
func debit(tx db.Tx, contributor string, amount uint64) (uint64, error) {
	current, err := tx.GetContribution(contributor)
	if err == model.ErrNotFound {
		return 0, model.NewError(model.CodeNotFound, "no contribution found")
	} else if err != nil {
		return 0, errors.Wrapf(err, "failed to query contribution of %q", contributor)
	}

	if amount > current {
		return 0, model.NewError(model.CodeInvalidAmount, "amount exceeds contribution")
	}

	remaining := current - amount
	if remaining == 0 {
		err = tx.DeleteContribution(contributor)
	} else {
		err = tx.SaveContribution(contributor, remaining)
	}

	if err != nil {
		return 0, errors.Wrapf(err, "failed to update contribution of %q", contributor)
	}

	return remaining, nil
}

func sumContributions(tx db.Tx) (total uint64, count int, err error) {
	err = tx.WalkContributions(func(contribution *model.Contribution) error {
		if total > math.MaxUint64-contribution.Amount {
			return model.NewError(model.CodeInvalidAmount, "ledger total overflow")
		}
		total += contribution.Amount
		count++
		return nil
	})
	return
}
