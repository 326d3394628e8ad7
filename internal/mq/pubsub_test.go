package mq

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newTestPubSub(t *testing.T) *PubSubClient {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(context.Background(), "accounts-test", option.WithGRPCConn(conn))
	require.NoError(t, err)

	p := &PubSubClient{client: client, suffix: "-sub", topics: make(map[string]*pubsub.Topic)}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPubSubClient_PublishAndSubscribe(t *testing.T) {
	p := newTestPubSub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan Message, 1)
	subscribed := make(chan error, 1)
	go func() {
		subscribed <- p.Subscribe(ctx, "account-events", func(_ context.Context, msg Message) error {
			received <- msg
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		ok, err := p.client.Subscription("account-events-sub").Exists(ctx)
		return err == nil && ok
	}, 5*time.Second, 20*time.Millisecond)

	id, err := p.Publish(ctx, "account-events", []byte(`{"type":"session.opened"}`), map[string]string{"type": "session.opened"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case msg := <-received:
		assert.Equal(t, id, msg.ID)
		assert.JSONEq(t, `{"type":"session.opened"}`, string(msg.Data))
		assert.Equal(t, "session.opened", msg.Attributes["type"])
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}

	cancel()
	<-subscribed
}

func TestPubSubClient_CachesTopics(t *testing.T) {
	p := newTestPubSub(t)
	ctx := context.Background()

	_, err := p.Publish(ctx, "account-events", []byte(`{}`), nil)
	require.NoError(t, err)
	_, err = p.Publish(ctx, "account-events", []byte(`{}`), nil)
	require.NoError(t, err)
	assert.Len(t, p.topics, 1)

	_, err = p.Publish(ctx, "", []byte(`{}`), nil)
	assert.ErrorContains(t, err, "pubsub channel is required")
}
