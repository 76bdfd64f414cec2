package app

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherSendReturnsResultValue(t *testing.T) {
	client := &FakeChatClient{FailFor: map[int64]error{200: fmt.Errorf("telegram: forbidden")}}
	d := NewDispatcher(client, 0, testLogger())

	ok := d.Send(100, "hello", nil)
	assert.True(t, ok.Success)
	assert.NotEmpty(t, ok.MessageID)
	assert.NoError(t, ok.Err)

	failed := d.Send(200, "hello", nil)
	assert.False(t, failed.Success)
	assert.Error(t, failed.Err)
}

func TestDispatcherBatchIsolatesFailures(t *testing.T) {
	client := &FakeChatClient{FailFor: map[int64]error{200: fmt.Errorf("telegram: blocked")}}
	d := NewDispatcher(client, 0, testLogger())

	results := d.SendBatch([]Outbound{
		{ChatID: 100, Text: "one"},
		{ChatID: 200, Text: "two"},
		{ChatID: 300, Text: "three"},
	})

	require.Len(t, results, 3, "one result per item, in order")
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success, "a failed item must not stop the batch")
	assert.Len(t, client.Sent, 2)
}
