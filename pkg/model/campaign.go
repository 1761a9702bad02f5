package model

import (
	"time"
)

type Link struct {
	Name string `json:"name" toml:"name"`
	Href string `json:"href" toml:"href"`
}

// Tier is a descriptive reward level, it's never enforced.
type Tier struct {
	Name                 string `json:"name" toml:"name"`
	Description          string `json:"description" toml:"description"`
	RequiredContribution uint64 `json:"required_contribution" toml:"required_contribution"`
}

// Status is the lifecycle state of a campaign
type Status string

const (
	StatusActive  = Status("active")
	StatusSettled = Status("settled")
)

// SettlementBasis selects which balance is split at settlement time
type SettlementBasis string

const (
	// SettlementBasisCustody splits whatever the custody service reports for the campaign address
	SettlementBasisCustody = SettlementBasis("custody")
	// SettlementBasisLedger splits only funds attributed to contributors
	SettlementBasisLedger = SettlementBasis("ledger")
)

// CampaignMeta is the creator supplied part of a campaign
type CampaignMeta struct {
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	EndTime             Timestamp `json:"end_time"`
	Goal                uint64    `json:"goal"`
	Links               []Link    `json:"links"`
	Tiers               []Tier    `json:"tiers"`
	MinimumContribution *uint64   `json:"minimum_contribution,omitempty"`
}

type Campaign struct {
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	EndTime             Timestamp   `json:"end_time"`
	Goal                uint64      `json:"goal"`
	Links               []Link      `json:"links"`
	Tiers               []Tier      `json:"tiers"`
	Creator             string      `json:"creator"`
	MinimumContribution *uint64     `json:"minimum_contribution,omitempty"`
	Status              Status      `json:"status"`
	Settlement          *Settlement `json:"settlement,omitempty"`
}

// Ended reports whether the pledge window is closed at the given instant.
func (c *Campaign) Ended(now time.Time) bool {
	return !now.Before(c.EndTime.Time())
}

func (c *Campaign) Settled() bool {
	return c.Status == StatusSettled
}

// Settlement records the one-shot payout
type Settlement struct {
	Basis     SettlementBasis `json:"basis"`
	Balance   uint64          `json:"balance"`
	Fee       uint64          `json:"fee"`
	Payout    uint64          `json:"payout"`
	Treasury  string          `json:"treasury"`
	SettledAt Timestamp       `json:"settled_at"`
}

// Config is written once at instantiation
type Config struct {
	TokenAddress string `json:"token_address"`
	Denom        string `json:"denom"`
}

type Contribution struct {
	Contributor string `json:"contributor"`
	Amount      uint64 `json:"amount"`
}

type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// CampaignStatus is a derived summary of the campaign lifecycle
type CampaignStatus struct {
	Status       Status `json:"status"`
	Ended        bool   `json:"ended"`
	TotalPledged uint64 `json:"total_pledged"`
	Contributors int    `json:"contributors"`
	Goal         uint64 `json:"goal"`
}
