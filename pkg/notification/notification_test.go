package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/notification"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSNSPublisher_Publish(t *testing.T) {
	client := new(mockSNS)
	client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.TopicArn) == "arn:topic" &&
			aws.ToString(in.Subject) == "New Product Created" &&
			aws.ToString(in.Message) == `{"id":"1"}`
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil)

	p := notification.NewSNSPublisherWithClient(client)
	require.NoError(t, p.Publish(context.Background(), "arn:topic", "New Product Created", `{"id":"1"}`))
	client.AssertExpectations(t)
}

func TestSNSPublisher_Errors(t *testing.T) {
	client := new(mockSNS)
	client.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))
	p := notification.NewSNSPublisherWithClient(client)

	err := p.Publish(context.Background(), "arn:topic", "s", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")

	assert.Error(t, p.Publish(context.Background(), "", "s", "m"), "missing topic")
}

func TestWebhookPublisher_Posts(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p, err := notification.NewWebhookPublisher(srv.URL)
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), "products", "New Product Created", "hello"))

	assert.Equal(t, map[string]string{
		"topic": "products", "subject": "New Product Created", "message": "hello",
	}, got)
}

func TestWebhookPublisher_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p, err := notification.NewWebhookPublisher(srv.URL)
	require.NoError(t, err)
	assert.Error(t, p.Publish(context.Background(), "t", "s", "m"))
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := notification.New(context.Background(), "pigeon", "")
	assert.Error(t, err)

	p, err := notification.New(context.Background(), "log", "")
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), "t", "s", "m"))
}
