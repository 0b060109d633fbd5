package main

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/internal/kernel"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/notification"
	"github.com/shashiranjanraj/shopfront/pkg/queue"
	"github.com/shashiranjanraj/shopfront/pkg/recordstore"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, string, string) error {
	return errors.New("topic gone")
}

func newApp(t *testing.T, pub notification.Publisher) *kernel.App {
	t.Helper()
	return kernel.NewWith(
		recordstore.NewMemoryStore(recordstore.DefaultSchema()),
		queue.NewMemoryDriver(10*time.Millisecond),
		pub,
		storage.NewLocalDisk(t.TempDir(), "http://files.test"),
	)
}

func TestHandlerFor(t *testing.T) {
	app := newApp(t, notification.LogPublisher{})
	for _, name := range []string{"importFileParser", "catalogBatchProcess"} {
		h, err := handlerFor(name, app)
		require.NoError(t, err)
		assert.NotNil(t, h)
	}
	_, err := handlerFor("getProductsList", app)
	assert.Error(t, err)
}

func TestImportFileParser(t *testing.T) {
	app := newApp(t, notification.LogPublisher{})
	ctx := context.Background()
	require.NoError(t, app.Disk.Put(ctx, "uploaded/a.csv", []byte("id,name,price,count\n1,One,1,1\n")))

	resp, err := importFileParser(app)(ctx, events.S3Event{Records: []events.S3EventRecord{{
		S3: events.S3Entity{Object: events.S3Object{Key: "uploaded/a.csv"}},
	}}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"File processed successfully"}`, resp.Body)
}

func TestCatalogBatchProcess(t *testing.T) {
	ev := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "1", Body: `{"id":"p1","name":"One","price":1,"count":2}`},
	}}

	resp, err := catalogBatchProcess(newApp(t, notification.LogPublisher{}))(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = catalogBatchProcess(newApp(t, failingPublisher{}))(context.Background(), ev)
	require.NoError(t, err, "failures are reported in the response, not returned")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Batch processing failed"}`, resp.Body)
}

func TestAuthorizer(t *testing.T) {
	gate := auth.NewGateWithLookup(func(user string) string {
		if user == "ADMIN" {
			return "pw"
		}
		return ""
	})
	h := authorizer(gate)

	resp, _ := h(context.Background(), events.APIGatewayProxyRequest{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := base64.StdEncoding.EncodeToString([]byte("admin:pw"))
	resp, _ = h(context.Background(), events.APIGatewayProxyRequest{
		Headers: map[string]string{"authorization": "Basic " + token},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Access granted!"}`, resp.Body)
}
