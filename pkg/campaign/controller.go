package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/kickstarter/pkg/addr"
	"github.com/mxpv/kickstarter/pkg/custody"
	"github.com/mxpv/kickstarter/pkg/db"
	"github.com/mxpv/kickstarter/pkg/model"
)

type Opts struct {
	// Self is the custody address holding pledged funds
	Self string
	// Treasury receives the settlement fee
	Treasury string
	Basis    model.SettlementBasis
	// Clock defaults to time.Now
	Clock func() time.Time
}

// Controller owns the campaign state machine. All mutations run in a single storage
// transaction, so a rejected call leaves no trace.
type Controller struct {
	store     db.Storage
	balances  custody.Balances
	validator addr.Validator
	opts      Opts
}

func New(store db.Storage, balances custody.Balances, validator addr.Validator, opts Opts) (*Controller, error) {
	if store == nil {
		return nil, errors.New("storage is required")
	}

	if validator == nil {
		return nil, errors.New("address validator is required")
	}

	if opts.Treasury == "" {
		return nil, errors.New("treasury address is required")
	}

	if opts.Basis == "" {
		opts.Basis = model.DefaultSettlementMode
	}

	switch opts.Basis {
	case model.SettlementBasisCustody:
		if balances == nil {
			return nil, errors.New("custody balances are required for custody settlement")
		}
		if opts.Self == "" {
			return nil, errors.New("campaign address is required for custody settlement")
		}
	case model.SettlementBasisLedger:
	default:
		return nil, errors.Errorf("unsupported settlement basis %q", opts.Basis)
	}

	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Controller{
		store:     store,
		balances:  balances,
		validator: validator,
		opts:      opts,
	}, nil
}

// Execute runs a mutating request. On success the state is committed and the
// response carries effects that still have to be dispatched.
func (c *Controller) Execute(ctx context.Context, info MessageInfo, req Request) (*Response, error) {
	if req == nil {
		return nil, model.NewError(model.CodeValidationFailed, "empty request")
	}

	resp := &Response{
		ID:     uuid.New().String(),
		Action: req.action(),
	}

	now := c.opts.Clock()

	err := c.store.Update(ctx, func(tx db.Tx) error {
		sender, err := c.validator.Validate(info.Sender)
		if err != nil {
			return model.WrapError(model.CodeValidationFailed, "invalid sender", err)
		}

		info.Sender = sender
		resp.addAttribute("action", resp.Action)

		switch r := req.(type) {
		case Instantiate:
			err = c.instantiate(tx, info, r, resp)
		case EditCampaign:
			err = c.edit(tx, info, r, resp)
		case Pledge:
			err = c.pledge(tx, now, info, resp)
		case ReversePledge:
			err = c.reversePledge(tx, info, r, resp)
		case Settle:
			err = c.settle(ctx, tx, now, info, resp)
		default:
			err = model.NewError(model.CodeValidationFailed, fmt.Sprintf("unsupported request %T", req))
		}

		if err != nil {
			return err
		}

		// Make sure every effect can be rendered before committing
		for _, e := range resp.Effects {
			if _, err := e.Payload(); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"id":     resp.ID,
			"action": resp.Action,
			"sender": info.Sender,
		}).Debug("call rejected")
		return nil, err
	}

	log.WithFields(log.Fields{
		"id":      resp.ID,
		"action":  resp.Action,
		"sender":  info.Sender,
		"effects": len(resp.Effects),
	}).Info("call committed")

	return resp, nil
}

func (c *Controller) instantiate(tx db.Tx, info MessageInfo, req Instantiate, resp *Response) error {
	if _, err := tx.GetConfig(); err == nil {
		return model.NewError(model.CodePreconditionFailed, "already instantiated")
	} else if err != model.ErrNotFound {
		return errors.Wrap(err, "failed to query config")
	}

	token, err := c.validator.Validate(req.TokenAddress)
	if err != nil {
		return model.WrapError(model.CodeValidationFailed, "invalid token address", err)
	}

	if req.Denom == "" {
		return model.NewError(model.CodeValidationFailed, "denom is required")
	}

	cfg := &model.Config{
		TokenAddress: token,
		Denom:        req.Denom,
	}

	meta := req.Campaign
	campaign := &model.Campaign{
		Name:                meta.Name,
		Description:         meta.Description,
		EndTime:             meta.EndTime,
		Goal:                meta.Goal,
		Links:               meta.Links,
		Tiers:               meta.Tiers,
		MinimumContribution: meta.MinimumContribution,
		Creator:             info.Sender,
		Status:              model.StatusActive,
	}

	if err := tx.SaveConfig(cfg); err != nil {
		return errors.Wrap(err, "failed to save config")
	}

	if err := tx.SaveCampaign(campaign); err != nil {
		return errors.Wrap(err, "failed to save campaign")
	}

	resp.addAttribute("campaign", campaign.Name)
	resp.addAttribute("creator", campaign.Creator)
	resp.addAttribute("token_address", cfg.TokenAddress)
	resp.Data = campaign
	return nil
}

func (c *Controller) edit(tx db.Tx, info MessageInfo, req EditCampaign, resp *Response) error {
	campaign, err := loadCampaign(tx)
	if err != nil {
		return err
	}

	if info.Sender != campaign.Creator {
		return model.NewError(model.CodeUnauthorized, "unauthorized")
	}

	if campaign.Settled() {
		return model.NewError(model.CodePreconditionFailed, "campaign already settled")
	}

	campaign.Description = req.Description
	campaign.Links = req.Links
	campaign.MinimumContribution = req.MinimumContribution

	if err := tx.SaveCampaign(campaign); err != nil {
		return errors.Wrap(err, "failed to save campaign")
	}

	resp.addAttribute("campaign", campaign.Name)
	resp.Data = campaign
	return nil
}

// Query answers a read-only request.
func (c *Controller) Query(ctx context.Context, query Query) (interface{}, error) {
	switch q := query.(type) {
	case GetCampaign:
		return c.Campaign(ctx)
	case GetConfig:
		return c.Config(ctx)
	case ListContributions:
		return c.Contributions(ctx)
	case GetContribution:
		return c.Contribution(ctx, q.Address)
	case GetStatus:
		return c.Status(ctx)
	default:
		return nil, model.NewError(model.CodeValidationFailed, fmt.Sprintf("unsupported query %T", query))
	}
}

func (c *Controller) Campaign(ctx context.Context) (campaign *model.Campaign, err error) {
	err = c.store.View(ctx, func(tx db.Tx) error {
		campaign, err = tx.GetCampaign()
		return err
	})
	if err == model.ErrNotFound {
		return nil, model.WrapError(model.CodeNotFound, "campaign not found", err)
	}
	return
}

func (c *Controller) Config(ctx context.Context) (cfg *model.Config, err error) {
	err = c.store.View(ctx, func(tx db.Tx) error {
		cfg, err = tx.GetConfig()
		return err
	})
	if err == model.ErrNotFound {
		return nil, model.WrapError(model.CodeNotFound, "config not found", err)
	}
	return
}

// Contributions returns the ledger in ascending contributor order.
func (c *Controller) Contributions(ctx context.Context) ([]*model.Contribution, error) {
	list := []*model.Contribution{}
	err := c.store.View(ctx, func(tx db.Tx) error {
		return tx.WalkContributions(func(contribution *model.Contribution) error {
			list = append(list, contribution)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Contribution returns the cumulative amount of address, zero when it never pledged.
func (c *Controller) Contribution(ctx context.Context, address string) (*model.Contribution, error) {
	contributor, err := c.validator.Validate(address)
	if err != nil {
		return nil, model.WrapError(model.CodeValidationFailed, "invalid address", err)
	}

	var amount uint64
	err = c.store.View(ctx, func(tx db.Tx) error {
		amount, err = tx.GetContribution(contributor)
		if err == model.ErrNotFound {
			amount = 0
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return &model.Contribution{Contributor: contributor, Amount: amount}, nil
}

func (c *Controller) Status(ctx context.Context) (*model.CampaignStatus, error) {
	status := &model.CampaignStatus{}
	err := c.store.View(ctx, func(tx db.Tx) error {
		campaign, err := tx.GetCampaign()
		if err != nil {
			return err
		}

		total, count, err := sumContributions(tx)
		if err != nil {
			return err
		}

		status.Status = campaign.Status
		status.Ended = campaign.Ended(c.opts.Clock())
		status.Goal = campaign.Goal
		status.TotalPledged = total
		status.Contributors = count
		return nil
	})
	if err == model.ErrNotFound {
		return nil, model.WrapError(model.CodeNotFound, "campaign not found", err)
	}
	if err != nil {
		return nil, err
	}
	return status, nil
}

func loadCampaign(tx db.Tx) (*model.Campaign, error) {
	campaign, err := tx.GetCampaign()
	if err == model.ErrNotFound {
		return nil, model.NewError(model.CodePreconditionFailed, "campaign is not instantiated")
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query campaign")
	}
	return campaign, nil
}

func loadConfig(tx db.Tx) (*model.Config, error) {
	cfg, err := tx.GetConfig()
	if err == model.ErrNotFound {
		return nil, model.NewError(model.CodePreconditionFailed, "campaign is not instantiated")
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to query config")
	}
	return cfg, nil
}
