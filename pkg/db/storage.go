package db

import (
	"context"

	"github.com/mxpv/kickstarter/pkg/model"
)

const (
	CurrentVersion = 1
)

// Storage persists a single campaign instance. Every Update is one atomic unit of work:
// if the callback returns an error nothing it wrote is kept.
type Storage interface {
	Close() error
	Version() (int, error)

	// View runs a read only transaction
	View(ctx context.Context, fn func(tx Tx) error) error

	// Update runs a read-write transaction and commits it when fn succeeds
	Update(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes typed records scoped by namespace (config, campaign, ledger).
type Tx interface {
	// GetConfig returns model.ErrNotFound before instantiation
	GetConfig() (*model.Config, error)
	// SaveConfig is write-once, it fails with model.ErrAlreadyExists on a second call
	SaveConfig(cfg *model.Config) error

	GetCampaign() (*model.Campaign, error)
	SaveCampaign(campaign *model.Campaign) error

	// GetContribution returns model.ErrNotFound when contributor has no entry
	GetContribution(contributor string) (uint64, error)
	SaveContribution(contributor string, amount uint64) error
	DeleteContribution(contributor string) error

	// WalkContributions iterates over ledger entries in ascending contributor order
	WalkContributions(cb func(contribution *model.Contribution) error) error

	// ClearContributions removes every ledger entry and returns how many were removed
	ClearContributions() (int, error)
}
