package campaign

import (
	"github.com/mxpv/kickstarter/pkg/effect"
	"github.com/mxpv/kickstarter/pkg/model"
)

// MessageInfo is the envelope of a mutating call: who sent it and what funds were attached.
type MessageInfo struct {
	Sender string       `json:"sender"`
	Funds  []model.Coin `json:"funds"`
}

// Request is one of Instantiate, EditCampaign, Pledge, ReversePledge or Settle.
type Request interface {
	action() string
}

// Instantiate creates the campaign. The sender becomes its creator.
type Instantiate struct {
	TokenAddress string             `json:"token_address"`
	Denom        string             `json:"denom"`
	Campaign     model.CampaignMeta `json:"campaign"`
}

// EditCampaign replaces the mutable part of the campaign record.
type EditCampaign struct {
	Description         string       `json:"description"`
	Links               []model.Link `json:"links"`
	MinimumContribution *uint64      `json:"minimum_contribution,omitempty"`
}

// Pledge adds the attached funds to the sender's contribution.
type Pledge struct{}

// ReversePledge is delivered by the receipt token service when Sender returns Amount receipt tokens.
type ReversePledge struct {
	Sender string `json:"sender"`
	Amount uint64 `json:"amount"`
}

// Settle pays out the campaign to its creator.
type Settle struct{}

func (Instantiate) action() string   { return "instantiate" }
func (EditCampaign) action() string  { return "update_campaign" }
func (Pledge) action() string        { return "contribute" }
func (ReversePledge) action() string { return "refund" }
func (Settle) action() string        { return "settle" }

// Query is one of GetCampaign, GetConfig, ListContributions, GetContribution or GetStatus.
type Query interface {
	query()
}

type GetCampaign struct{}

type GetConfig struct{}

type ListContributions struct{}

type GetContribution struct {
	Address string `json:"address"`
}

type GetStatus struct{}

func (GetCampaign) query()       {}
func (GetConfig) query()         {}
func (ListContributions) query() {}
func (GetContribution) query()   {}
func (GetStatus) query()         {}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the result of a committed call.
// Effects must be executed by the host, they have not been applied yet.
type Response struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	Attributes []Attribute     `json:"attributes"`
	Effects    []effect.Effect `json:"effects"`
	Data       interface{}     `json:"data,omitempty"`
}

func (r *Response) addAttribute(key, value string) {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
}

func (r *Response) addEffect(e effect.Effect) {
	r.Effects = append(r.Effects, e)
}

// Attribute returns the first attribute value with the given key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, attr := range r.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Batch wraps the effects for dispatching.
func (r *Response) Batch() *effect.Batch {
	return &effect.Batch{
		ID:      r.ID,
		Action:  r.Action,
		Effects: r.Effects,
	}
}
