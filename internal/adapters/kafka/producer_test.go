package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRejectsUnencodableEvent(t *testing.T) {
	p := NewProducer(ProducerConfig{Brokers: []string{"127.0.0.1:1"}, Async: true})

	err := p.Publish(context.Background(), TopicProviderAttempts, "k", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal event")
}

func TestWriterReusedPerTopic(t *testing.T) {
	p := NewProducer(ProducerConfig{Brokers: []string{"127.0.0.1:1"}, Async: true})

	w1 := p.getWriter(TopicProviderAttempts)
	w2 := p.getWriter(TopicProviderAttempts)
	assert.Same(t, w1, w2)
	assert.True(t, w1.Async)
	assert.NotNil(t, w1.Completion)

	require.NoError(t, p.Close())
}
