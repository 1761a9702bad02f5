package effect

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	chanSize           = 1024
	maxElementPerBatch = 10 // SQS Batch limit is 10 items per request
	flushInterval      = 5 * time.Second
)

// SQS queues effect batches to an Amazon SQS queue, one message per batch.
type SQS struct {
	url    *string
	queue  sqsiface.SQSAPI
	items  chan *Batch
	done   chan struct{}
	cancel context.CancelFunc
}

var _ Dispatcher = (*SQS)(nil)

var ErrClosed = errors.New("dispatcher is closed")

func NewSQS(ctx context.Context, url string, region string) (*SQS, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}

	return newSQS(ctx, url, sqs.New(sess)), nil
}

func newSQS(ctx context.Context, url string, queue sqsiface.SQSAPI) *SQS {
	ctx, cancel := context.WithCancel(ctx)

	sender := &SQS{
		url:    aws.String(url),
		queue:  queue,
		items:  make(chan *Batch, chanSize),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go sender.transmit(ctx)

	return sender
}

func (s *SQS) Dispatch(ctx context.Context, batch *Batch) error {
	select {
	case <-s.done:
		return errors.Wrapf(ErrClosed, "batch %q dropped", batch.ID)
	default:
	}

	select {
	case <-s.done:
		return errors.Wrapf(ErrClosed, "batch %q dropped", batch.ID)
	case s.items <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the sender and waits for leftovers to be flushed.
func (s *SQS) Close() {
	s.cancel()
	<-s.done
}

func (s *SQS) transmit(ctx context.Context) {
	defer close(s.done)

	var list = make([]*Batch, 0, maxElementPerBatch)

	flush := func(ctx context.Context) {
		if len(list) == 0 {
			return
		}

		if err := s.send(ctx, list); err != nil {
			log.WithError(err).Error("failed to send batch")
		}

		list = make([]*Batch, 0, maxElementPerBatch)
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Flush list if not filled up entirely within the interval
			flush(ctx)

		case item := <-s.items:
			list = append(list, item)
			if len(list) == maxElementPerBatch {
				flush(ctx)
			}

		case <-ctx.Done():
			// Exiting, drain and flush leftovers
			for {
				select {
				case item := <-s.items:
					list = append(list, item)
					if len(list) == maxElementPerBatch {
						flush(context.Background())
					}
					continue
				default:
				}
				break
			}
			flush(context.Background())
			return
		}
	}
}

func (s *SQS) send(ctx context.Context, list []*Batch) error {
	if len(list) == 0 {
		return nil
	}

	sendInput := &sqs.SendMessageBatchInput{
		QueueUrl: s.url,
	}

	for _, item := range list {
		data, err := json.Marshal(item)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal batch %q", item.ID)
		}

		sendInput.Entries = append(sendInput.Entries, &sqs.SendMessageBatchRequestEntry{
			Id:          aws.String(item.ID),
			MessageBody: aws.String(string(data)),
		})
	}

	out, err := s.queue.SendMessageBatchWithContext(ctx, sendInput)
	if err != nil {
		return errors.Wrap(err, "failed to send message batch")
	}

	for _, failed := range out.Failed {
		log.WithFields(log.Fields{
			"id":   aws.StringValue(failed.Id),
			"code": aws.StringValue(failed.Code),
		}).Error(aws.StringValue(failed.Message))
	}

	log.Infof("sent %d batch(es) to SQS", len(list)-len(out.Failed))
	return nil
}
