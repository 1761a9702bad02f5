package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mxpv/kickstarter/pkg/addr"
	"github.com/mxpv/kickstarter/pkg/campaign"
	"github.com/mxpv/kickstarter/pkg/custody"
	"github.com/mxpv/kickstarter/pkg/db"
	"github.com/mxpv/kickstarter/pkg/effect"
	"github.com/mxpv/kickstarter/pkg/model"
	"github.com/mxpv/kickstarter/pkg/server"
	"github.com/mxpv/kickstarter/pkg/stats"
)

type Opts struct {
	ConfigPath string `long:"config" short:"c" default:"config.toml" env:"KICKSTARTER_CONFIG_PATH"`
	Debug      bool   `long:"debug"`
	NoBanner   bool   `long:"no-banner"`
}

const banner = `
 _  ___      _        _             _
| |/ (_) ___| | _____| |_ __ _ _ __| |_ ___ _ __
| ' /| |/ __| |/ / __| __/ _' | '__| __/ _ \ '__|
| . \| | (__|   <\__ \ || (_| | |  | ||  __/ |
|_|\_\_|\___|_|\_\___/\__\__,_|_|   \__\___|_|
`

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	// Parse args
	opts := Opts{}
	_, err := flags.Parse(&opts)
	if err != nil {
		log.WithError(err).Fatal("failed to parse command line arguments")
	}

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if !opts.NoBanner {
		log.Info(banner)
	}

	log.WithFields(log.Fields{
		"version": version,
		"commit":  commit,
		"date":    date,
	}).Info("running kickstarter")

	// Load TOML file
	log.Debugf("loading configuration %q", opts.ConfigPath)
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration file")
	}

	if cfg.Log.Filename != "" {
		log.Infof("writing logs to %q", cfg.Log.Filename)
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.Log.Filename,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		})
	}

	database, err := db.NewBadger(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}

	defer func() {
		if err := database.Close(); err != nil {
			log.WithError(err).Error("failed to close database")
		}
	}()

	var (
		balances custody.Balances
		bank     *custody.Memory
	)

	switch cfg.Custody.Mode {
	case CustodyModeMemory:
		log.Warn("using in-memory custody, balances are not persisted")
		bank = custody.NewMemory(cfg.Campaign.Address)
		bank.Faucet = true
		balances = bank
	case CustodyModeREST:
		balances = custody.NewREST(cfg.Custody.Endpoint, time.Duration(cfg.Custody.Timeout)*time.Second)
	}

	ctrl, err := campaign.New(database, balances, addr.NewBech32(cfg.AddressPrefix), campaign.Opts{
		Self:     cfg.Campaign.Address,
		Treasury: cfg.Settlement.Treasury,
		Basis:    cfg.Settlement.Basis,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create campaign controller")
	}

	if err := instantiate(ctx, ctrl, cfg.Campaign); err != nil {
		log.WithError(err).Fatal("failed to instantiate campaign")
	}

	dispatcher, closeDispatcher, err := newDispatcher(ctx, cfg.Dispatch, bank)
	if err != nil {
		log.WithError(err).Fatal("failed to create effect dispatcher")
	}
	defer closeDispatcher()

	// Run deadline watcher
	watcher := NewWatcher(ctrl, cfg.Hooks.OnCampaignEnd)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err = c.AddFunc(cfg.Watcher.Schedule, func() {
		if err := watcher.Check(ctx); err != nil {
			log.WithError(err).Error("failed to check campaign")
		}
	})
	if err != nil {
		log.WithError(err).Fatalf("can't create cron task with schedule %q", cfg.Watcher.Schedule)
	}

	group.Go(func() error {
		defer func() {
			log.Info("shutting down cron")
			c.Stop()
		}()

		if err := watcher.Check(ctx); err != nil {
			log.WithError(err).Error("failed to check campaign")
		}

		c.Start()

		<-ctx.Done()
		return ctx.Err()
	})

	// Run web server
	var serverOpts []server.Option
	if cfg.Dispatch.Mode == DispatchModeMemory {
		log.Warn("sandbox mode, attached funds are minted to senders on demand")
		serverOpts = append(serverOpts, server.WithSandbox(bank))
	}

	var srv *server.Server
	if cfg.Stats.RedisURL != "" {
		redisStats, err := stats.NewRedis(cfg.Stats.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisStats.Close()

		srv = server.New(cfg.Server, ctrl, dispatcher, redisStats, serverOpts...)
	} else {
		srv = server.New(cfg.Server, ctrl, dispatcher, nil, serverOpts...)
	}

	group.Go(func() error {
		log.Infof("running listener at %s", srv.Addr)
		return srv.ListenAndServe()
	})

	group.Go(func() error {
		// Shutdown web server
		defer func() {
			log.Info("shutting down web server")
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelShutdown()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Error("server shutdown failed")
			}
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			cancel()
			return nil
		}
	})

	if err := group.Wait(); err != nil && (err != context.Canceled && err != http.ErrServerClosed) {
		log.WithError(err).Error("wait error")
	}

	log.Info("gracefully stopped")
}

// instantiate creates the campaign on the very first start.
func instantiate(ctx context.Context, ctrl *campaign.Controller, cfg Campaign) error {
	existing, err := ctrl.Config(ctx)
	if err == nil {
		log.WithField("token", existing.TokenAddress).Info("campaign already instantiated, ignoring [campaign] changes")
		return nil
	}

	if !errors.Is(err, model.ErrNotFound) {
		return err
	}

	resp, err := ctrl.Execute(ctx, campaign.MessageInfo{Sender: cfg.Creator}, campaign.Instantiate{
		TokenAddress: cfg.TokenAddress,
		Denom:        cfg.Denom,
		Campaign:     cfg.Meta(),
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"id":       resp.ID,
		"name":     cfg.Name,
		"end_time": cfg.EndTime,
	}).Info("campaign instantiated")

	return nil
}

func newDispatcher(ctx context.Context, cfg Dispatch, bank *custody.Memory) (effect.Dispatcher, func(), error) {
	switch cfg.Mode {
	case DispatchModeLog:
		return effect.Logger{}, func() {}, nil
	case DispatchModeMemory:
		if bank == nil {
			return nil, nil, errors.New("in-memory dispatch requires in-memory custody")
		}
		return effect.Multi{effect.Logger{}, bank}, func() {}, nil
	case DispatchModeSQS:
		queue, err := effect.NewSQS(ctx, cfg.SQS.URL, cfg.SQS.Region)
		if err != nil {
			return nil, nil, err
		}
		return effect.Multi{effect.Logger{}, queue}, queue.Close, nil
	case DispatchModeKafka:
		writer := effect.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		return effect.Multi{effect.Logger{}, writer}, func() {
			if err := writer.Close(); err != nil {
				log.WithError(err).Error("failed to close kafka writer")
			}
		}, nil
	default:
		return nil, nil, errors.Errorf("unsupported dispatch mode %q", cfg.Mode)
	}
}
