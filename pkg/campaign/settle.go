package campaign

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/kickstarter/pkg/db"
	"github.com/mxpv/kickstarter/pkg/effect"
	"github.com/mxpv/kickstarter/pkg/fee"
	"github.com/mxpv/kickstarter/pkg/model"
)

func (c *Controller) settle(ctx context.Context, tx db.Tx, now time.Time, info MessageInfo, resp *Response) error {
	campaign, err := loadCampaign(tx)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(tx)
	if err != nil {
		return err
	}

	if info.Sender != campaign.Creator {
		return model.NewError(model.CodeUnauthorized, "unauthorized")
	}

	if !campaign.Ended(now) {
		return model.NewError(model.CodePreconditionFailed, "campaign has not ended")
	}

	if campaign.Settled() {
		return model.NewError(model.CodePreconditionFailed, "campaign already settled")
	}

	pledged, _, err := sumContributions(tx)
	if err != nil {
		return err
	}

	balance, err := c.settlementBalance(ctx, cfg, pledged)
	if err != nil {
		return err
	}

	payout, feeAmount := fee.Split(balance)

	if feeAmount > 0 {
		resp.addEffect(effect.Send(c.opts.Treasury, feeAmount, cfg.Denom))
	}

	if payout > 0 {
		resp.addEffect(effect.Send(campaign.Creator, payout, cfg.Denom))
	}

	cleared, err := tx.ClearContributions()
	if err != nil {
		return errors.Wrap(err, "failed to clear ledger")
	}

	settlement := &model.Settlement{
		Basis:     c.opts.Basis,
		Balance:   balance,
		Fee:       feeAmount,
		Payout:    payout,
		Treasury:  c.opts.Treasury,
		SettledAt: model.NewTimestamp(now),
	}

	campaign.Status = model.StatusSettled
	campaign.Settlement = settlement

	if err := tx.SaveCampaign(campaign); err != nil {
		return errors.Wrap(err, "failed to save campaign")
	}

	log.WithFields(log.Fields{
		"basis":   settlement.Basis,
		"balance": balance,
		"pledged": pledged,
		"cleared": cleared,
	}).Debug("settling campaign")

	resp.addAttribute("campaign", campaign.Name)
	resp.addAttribute("balance", strconv.FormatUint(balance, 10))
	resp.addAttribute("fee", strconv.FormatUint(feeAmount, 10))
	resp.addAttribute("payout", strconv.FormatUint(payout, 10))
	resp.Data = settlement
	return nil
}

func (c *Controller) settlementBalance(ctx context.Context, cfg *model.Config, pledged uint64) (uint64, error) {
	if c.opts.Basis == model.SettlementBasisLedger {
		return pledged, nil
	}

	balance, err := c.balances.Balance(ctx, c.opts.Self, cfg.Denom)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to query custody balance of %q", c.opts.Self)
	}

	return balance, nil
}
