package effect

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	sqsiface.SQSAPI

	lock   sync.Mutex
	inputs []*sqs.SendMessageBatchInput
}

func (f *fakeQueue) SendMessageBatchWithContext(_ aws.Context, input *sqs.SendMessageBatchInput, _ ...request.Option) (*sqs.SendMessageBatchOutput, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.inputs = append(f.inputs, input)
	return &sqs.SendMessageBatchOutput{}, nil
}

func TestSQS_FlushOnClose(t *testing.T) {
	queue := &fakeQueue{}
	sender := newSQS(context.Background(), "https://sqs.local/effects", queue)

	batch := &Batch{ID: "op-1", Action: "pledge", Effects: []Effect{Mint("token", "user", 100)}}
	require.NoError(t, sender.Dispatch(context.Background(), batch))

	sender.Close()

	queue.lock.Lock()
	defer queue.lock.Unlock()

	require.Len(t, queue.inputs, 1)
	input := queue.inputs[0]
	assert.Equal(t, "https://sqs.local/effects", aws.StringValue(input.QueueUrl))
	require.Len(t, input.Entries, 1)
	assert.Equal(t, "op-1", aws.StringValue(input.Entries[0].Id))

	var decoded Batch
	require.NoError(t, json.Unmarshal([]byte(aws.StringValue(input.Entries[0].MessageBody)), &decoded))
	assert.Equal(t, *batch, decoded)
}

func TestSQS_SplitsBatches(t *testing.T) {
	queue := &fakeQueue{}
	sender := newSQS(context.Background(), "url", queue)

	for i := 0; i < maxElementPerBatch+1; i++ {
		require.NoError(t, sender.Dispatch(context.Background(), &Batch{ID: string(rune('a' + i))}))
	}

	sender.Close()

	queue.lock.Lock()
	defer queue.lock.Unlock()

	total := 0
	for _, input := range queue.inputs {
		assert.LessOrEqual(t, len(input.Entries), maxElementPerBatch)
		total += len(input.Entries)
	}
	assert.Equal(t, maxElementPerBatch+1, total)
}

func TestSQS_DispatchAfterClose(t *testing.T) {
	queue := &fakeQueue{}
	sender := newSQS(context.Background(), "url", queue)
	sender.Close()

	err := sender.Dispatch(context.Background(), &Batch{ID: "late"})
	assert.ErrorIs(t, err, ErrClosed)

	queue.lock.Lock()
	defer queue.lock.Unlock()
	assert.Empty(t, queue.inputs)
}
