package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/kickstarter/pkg/campaign"
	"github.com/mxpv/kickstarter/pkg/custody"
	"github.com/mxpv/kickstarter/pkg/model"
)

type Config struct {
	// Hostname to listen on, empty means all interfaces
	Hostname string `toml:"hostname"`
	// Port is a server port to listen to
	Port int `toml:"port"`
	// Debug switches gin to debug mode
	Debug bool `toml:"debug"`
}

type Server struct {
	http.Server
}

func New(cfg Config, ctrl controller, dispatcher dispatcher, stats statsService, opts ...Option) *Server {
	port := cfg.Port
	if port == 0 {
		port = model.DefaultServerPort
	}

	srv := Server{}
	srv.Addr = fmt.Sprintf("%s:%d", cfg.Hostname, port)
	srv.Handler = NewHandler(ctrl, dispatcher, stats, cfg.Debug, opts...)

	log.Debugf("using address: %s", srv.Addr)
	return &srv
}

type handler struct {
	ctrl       controller
	dispatcher dispatcher
	stats      statsService
	sandbox    sandbox
	lock       *sync.Mutex
}

type Option func(h *handler)

// WithSandbox makes the server act as the host chain for an in-memory bank:
// funds and receipt tokens attached to a call are delivered to the campaign
// account before the call executes.
func WithSandbox(bank sandbox) Option {
	return func(h *handler) {
		h.sandbox = bank
	}
}

// NewHandler builds the message API. Stats are optional.
func NewHandler(ctrl controller, dispatcher dispatcher, stats statsService, debug bool, opts ...Option) http.Handler {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	h := handler{
		ctrl:       ctrl,
		dispatcher: dispatcher,
		stats:      stats,
		lock:       &sync.Mutex{},
	}

	for _, opt := range opts {
		opt(&h)
	}

	r.GET("/api/ping", h.ping)
	r.POST("/api/execute", h.execute)

	r.GET("/api/campaign", h.query(func(*gin.Context) campaign.Query { return campaign.GetCampaign{} }))
	r.GET("/api/config", h.query(func(*gin.Context) campaign.Query { return campaign.GetConfig{} }))
	r.GET("/api/status", h.query(func(*gin.Context) campaign.Query { return campaign.GetStatus{} }))
	r.GET("/api/contributions", h.query(func(*gin.Context) campaign.Query { return campaign.ListContributions{} }))
	r.GET("/api/contributions/:address", h.query(func(c *gin.Context) campaign.Query {
		return campaign.GetContribution{Address: c.Param("address")}
	}))

	r.GET("/api/stats/top/:metric", h.top)

	return r
}

func (h handler) ping(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h handler) execute(c *gin.Context) {
	req := &executeRequest{}
	if err := c.BindJSON(req); err != nil {
		c.JSON(badRequest(err))
		return
	}

	msg, err := req.Msg.request()
	if err != nil {
		c.JSON(badRequest(err))
		return
	}

	info := campaign.MessageInfo{
		Sender: req.Sender,
		Funds:  req.Funds,
	}

	resp, err := h.run(c.Request.Context(), info, msg)
	if err != nil {
		c.JSON(errorResponse(err))
		return
	}

	h.record(resp, info)

	c.JSON(http.StatusOK, resp)
}

// run executes msg and dispatches its effects.
// In sandbox mode calls are serialized, so custody never holds a pending envelope.
func (h handler) run(ctx context.Context, info campaign.MessageInfo, msg campaign.Request) (*campaign.Response, error) {
	var envelope custody.Envelope
	if h.sandbox != nil {
		h.lock.Lock()
		defer h.lock.Unlock()

		envelope = envelopeOf(info, msg)
		if err := h.sandbox.Deliver(envelope); err != nil {
			return nil, model.WrapError(model.CodeValidationFailed, "failed to deliver envelope", err)
		}
	}

	resp, err := h.ctrl.Execute(ctx, info, msg)
	if err != nil {
		if h.sandbox != nil {
			if err := h.sandbox.Return(envelope); err != nil {
				log.WithError(err).Error("failed to return envelope")
			}
		}
		return nil, err
	}

	// State is committed at this point, dispatch failures can't undo it
	if len(resp.Effects) > 0 {
		if err := h.dispatcher.Dispatch(ctx, resp.Batch()); err != nil {
			log.WithError(err).WithField("id", resp.ID).Error("failed to dispatch effects")
		}
	}

	return resp, nil
}

// envelopeOf is what the host moves along with a call: attached funds,
// plus the receipt tokens a token contract hands back on reversal.
func envelopeOf(info campaign.MessageInfo, msg campaign.Request) custody.Envelope {
	envelope := custody.Envelope{
		Sender: info.Sender,
		Funds:  info.Funds,
	}

	if reverse, ok := msg.(campaign.ReversePledge); ok {
		envelope.Token = info.Sender
		envelope.Holder = reverse.Sender
		envelope.Tokens = reverse.Amount
	}

	return envelope
}

func (h handler) record(resp *campaign.Response, info campaign.MessageInfo) {
	if h.stats == nil {
		return
	}

	subject := info.Sender
	if contributor, ok := resp.Attribute("contributor"); ok {
		subject = contributor
	}

	var amount uint64
	if value, ok := resp.Attribute("amount"); ok {
		amount, _ = strconv.ParseUint(value, 10, 64)
	} else if value, ok := resp.Attribute("payout"); ok {
		amount, _ = strconv.ParseUint(value, 10, 64)
	}

	if _, err := h.stats.Record(resp.Action, subject, amount); err != nil {
		log.WithError(err).Warn("failed to record stats")
	}
}

func (h handler) query(build func(c *gin.Context) campaign.Query) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := h.ctrl.Query(c.Request.Context(), build(c))
		if err != nil {
			c.JSON(errorResponse(err))
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

func (h handler) top(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stats are disabled", "code": model.CodeNotFound})
		return
	}

	top, err := h.stats.Top(c.Param("metric"))
	if err != nil {
		c.JSON(internalError(err))
		return
	}

	c.JSON(http.StatusOK, top)
}

type executeRequest struct {
	Sender string       `json:"sender" binding:"required"`
	Funds  []model.Coin `json:"funds"`
	Msg    executeMsg   `json:"msg"`
}

// executeMsg is a tagged union, exactly one field must be set.
type executeMsg struct {
	EditCampaign  *campaign.EditCampaign  `json:"edit_campaign,omitempty"`
	Pledge        *campaign.Pledge        `json:"pledge,omitempty"`
	ReversePledge *campaign.ReversePledge `json:"reverse_pledge,omitempty"`
	Settle        *campaign.Settle        `json:"settle,omitempty"`
}

func (m executeMsg) request() (campaign.Request, error) {
	var (
		out   campaign.Request
		count int
	)

	if m.EditCampaign != nil {
		out = *m.EditCampaign
		count++
	}
	if m.Pledge != nil {
		out = *m.Pledge
		count++
	}
	if m.ReversePledge != nil {
		out = *m.ReversePledge
		count++
	}
	if m.Settle != nil {
		out = *m.Settle
		count++
	}

	if count != 1 {
		return nil, errors.Errorf("exactly one message expected, got %d", count)
	}

	return out, nil
}

var statusCodes = map[model.Code]int{
	model.CodeUnauthorized:        http.StatusForbidden,
	model.CodePreconditionFailed:  http.StatusConflict,
	model.CodeValidationFailed:    http.StatusBadRequest,
	model.CodeNotFound:            http.StatusNotFound,
	model.CodeInvalidAmount:       http.StatusUnprocessableEntity,
	model.CodeSerializationFailed: http.StatusInternalServerError,
}

func errorResponse(err error) (int, interface{}) {
	code, ok := model.CodeOf(err)
	if !ok {
		return internalError(err)
	}

	status, ok := statusCodes[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).Error("server error")
	}

	return status, gin.H{"error": err.Error(), "code": code}
}

func badRequest(err error) (int, interface{}) {
	return http.StatusBadRequest, gin.H{"error": err.Error(), "code": model.CodeValidationFailed}
}

func internalError(err error) (int, interface{}) {
	log.WithError(err).Error("server error")
	return http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "internal_error"}
}
