package main

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/kickstarter/pkg/hook"
	"github.com/mxpv/kickstarter/pkg/model"
)

type campaignReader interface {
	Campaign(ctx context.Context) (*model.Campaign, error)
	Status(ctx context.Context) (*model.CampaignStatus, error)
}

// Watcher polls the campaign and fires end hooks once the deadline passes.
type Watcher struct {
	reader campaignReader
	hooks  []hook.Exec

	lock  sync.Mutex
	ended bool
}

func NewWatcher(reader campaignReader, hooks []hook.Exec) *Watcher {
	return &Watcher{
		reader: reader,
		hooks:  hooks,
	}
}

func (w *Watcher) Check(ctx context.Context) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.ended {
		return nil
	}

	status, err := w.reader.Status(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to query campaign status")
	}

	if !status.Ended {
		log.WithFields(log.Fields{
			"pledged":      status.TotalPledged,
			"contributors": status.Contributors,
		}).Debug("campaign is active")
		return nil
	}

	campaign, err := w.reader.Campaign(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to query campaign")
	}

	w.ended = true

	log.WithFields(log.Fields{
		"name":         campaign.Name,
		"status":       status.Status,
		"pledged":      status.TotalPledged,
		"goal":         status.Goal,
		"contributors": status.Contributors,
	}).Info("campaign has ended")

	if status.Status == model.StatusSettled {
		// Nothing to announce, settlement already happened
		return nil
	}

	env := hook.CampaignEnv(campaign, status)
	for idx := range w.hooks {
		if err := w.hooks[idx].Invoke(ctx, env); err != nil {
			log.WithError(err).Errorf("campaign end hook %d failed", idx)
		}
	}

	return nil
}
