package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/kickstarter/pkg/model"
)

const (
	versionPath        = "kickstarter/version"
	configPath         = "config"
	campaignPath       = "campaign"
	contributionPrefix = "contribution/"
	contributionPath   = "contribution/%s"
)

type Badger struct {
	db *badger.DB
}

var _ Storage = (*Badger)(nil)

func NewBadger(config *Config) (*Badger, error) {
	var opts badger.Options

	if config.InMemory {
		log.Info("opening in-memory database")
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dir := config.Dir
		log.Infof("opening database %q", dir)

		// Make sure database directory exists
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "could not mkdir database dir")
		}

		opts = badger.DefaultOptions(dir)
	}

	opts = opts.WithLogger(badgerLogger{log.StandardLogger()})

	if config.Badger != nil {
		opts = opts.WithSyncWrites(config.Badger.SyncWrites)
		if config.Badger.ValueLogFileSize > 0 {
			opts = opts.WithValueLogFileSize(config.Badger.ValueLogFileSize)
		}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	storage := &Badger{db: db}

	if err := db.Update(func(txn *badger.Txn) error {
		if err := storage.setObj(txn, []byte(versionPath), CurrentVersion, false); err != nil && err != model.ErrAlreadyExists {
			return err
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to read database version")
	}

	return storage, nil
}

func (b *Badger) Close() error {
	log.Debug("closing database")
	return b.db.Close()
}

func (b *Badger) Version() (int, error) {
	var (
		version = -1
	)

	err := b.db.View(func(txn *badger.Txn) error {
		return b.getObj(txn, []byte(versionPath), &version)
	})

	return version, err
}

func (b *Badger) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTx{b: b, txn: txn})
	})
}

func (b *Badger) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerTx{b: b, txn: txn})
	})
}

type badgerTx struct {
	b   *Badger
	txn *badger.Txn
}

func (t *badgerTx) GetConfig() (*model.Config, error) {
	cfg := &model.Config{}
	if err := t.b.getObj(t.txn, t.b.getKey(configPath), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (t *badgerTx) SaveConfig(cfg *model.Config) error {
	return t.b.setObj(t.txn, t.b.getKey(configPath), cfg, false)
}

func (t *badgerTx) GetCampaign() (*model.Campaign, error) {
	campaign := &model.Campaign{}
	if err := t.b.getObj(t.txn, t.b.getKey(campaignPath), campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (t *badgerTx) SaveCampaign(campaign *model.Campaign) error {
	return t.b.setObj(t.txn, t.b.getKey(campaignPath), campaign, true)
}

func (t *badgerTx) GetContribution(contributor string) (uint64, error) {
	var amount uint64
	if err := t.b.getObj(t.txn, t.b.getKey(contributionPath, contributor), &amount); err != nil {
		return 0, err
	}
	return amount, nil
}

func (t *badgerTx) SaveContribution(contributor string, amount uint64) error {
	if amount == 0 {
		return errors.Errorf("refusing to store zero contribution for %q", contributor)
	}
	return t.b.setObj(t.txn, t.b.getKey(contributionPath, contributor), amount, true)
}

func (t *badgerTx) DeleteContribution(contributor string) error {
	if err := t.txn.Delete(t.b.getKey(contributionPath, contributor)); err != nil {
		return errors.Wrapf(err, "failed to delete contribution of %q", contributor)
	}
	return nil
}

func (t *badgerTx) WalkContributions(cb func(contribution *model.Contribution) error) error {
	prefix := t.b.getKey(contributionPrefix)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = true
	return t.b.iterator(t.txn, opts, func(item *badger.Item) error {
		contribution := &model.Contribution{
			Contributor: strings.TrimPrefix(string(item.Key()), string(prefix)),
		}

		if err := t.b.unmarshalObj(item, &contribution.Amount); err != nil {
			return err
		}

		return cb(contribution)
	})
}

func (t *badgerTx) ClearContributions() (int, error) {
	var keys [][]byte

	opts := badger.DefaultIteratorOptions
	opts.Prefix = t.b.getKey(contributionPrefix)
	opts.PrefetchValues = false
	if err := t.b.iterator(t.txn, opts, func(item *badger.Item) error {
		keys = append(keys, item.KeyCopy(nil))
		return nil
	}); err != nil {
		return 0, errors.Wrap(err, "failed to iterate contributions")
	}

	for _, key := range keys {
		if err := t.txn.Delete(key); err != nil {
			return 0, errors.Wrapf(err, "failed to delete %q", key)
		}
	}

	return len(keys), nil
}

func (b *Badger) iterator(txn *badger.Txn, opts badger.IteratorOptions, callback func(item *badger.Item) error) error {
	iter := txn.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()

		if err := callback(item); err != nil {
			return err
		}
	}

	return nil
}

func (b *Badger) getKey(format string, a ...interface{}) []byte {
	resourcePath := fmt.Sprintf(format, a...)
	fullPath := fmt.Sprintf("kickstarter/v%d/%s", CurrentVersion, resourcePath)

	return []byte(fullPath)
}

func (b *Badger) setObj(txn *badger.Txn, key []byte, obj interface{}, overwrite bool) error {
	if !overwrite {
		// Overwrites are not allowed, make sure there is no object with the given key
		_, err := txn.Get(key)
		if err == nil {
			return model.ErrAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return errors.Wrap(err, "failed to check whether key exists")
		}
	}

	data, err := b.marshalObj(obj)
	if err != nil {
		return errors.Wrapf(err, "failed to serialize object for key %q", key)
	}

	return txn.Set(key, data)
}

func (b *Badger) getObj(txn *badger.Txn, key []byte, out interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return model.ErrNotFound
		}

		return err
	}

	return b.unmarshalObj(item, out)
}

func (b *Badger) marshalObj(obj interface{}) ([]byte, error) {
	return json.Marshal(obj)
}

func (b *Badger) unmarshalObj(item *badger.Item, out interface{}) error {
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

// badgerLogger routes badger's chatter to logrus, demoting info to debug.
type badgerLogger struct {
	*log.Logger
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Logger.Debugf(format, args...)
}
