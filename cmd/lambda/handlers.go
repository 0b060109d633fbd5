package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/shashiranjanraj/shopfront/internal/kernel"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

func handlerFor(name string, app *kernel.App) (any, error) {
	switch name {
	case "importFileParser":
		return importFileParser(app), nil
	case "catalogBatchProcess":
		return catalogBatchProcess(app), nil
	default:
		return nil, fmt.Errorf("unknown SHOPFRONT_HANDLER %q", name)
	}
}

func reply(status int, msg string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"message": msg})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

// importFileParser parses every uploaded object named in the event.
func importFileParser(app *kernel.App) func(context.Context, events.S3Event) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, ev events.S3Event) (events.APIGatewayProxyResponse, error) {
		if _, err := app.Import.HandleEvent(ctx, ev); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return reply(http.StatusNotFound, apperr.Message(err)), nil
			}
			logger.WithCtx(ctx).Error("lambda: import failed", "error", err)
			return reply(http.StatusInternalServerError, "Failed to process file"), nil
		}
		return reply(http.StatusOK, "File processed successfully"), nil
	}
}

// catalogBatchProcess reports a failed batch in the response only; the
// batch is not handed back for redelivery.
func catalogBatchProcess(app *kernel.App) func(context.Context, events.SQSEvent) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, ev events.SQSEvent) (events.APIGatewayProxyResponse, error) {
		if _, err := app.Catalog.HandleSQSEvent(ctx, ev); err != nil {
			logger.WithCtx(ctx).Error("lambda: batch failed", "records", len(ev.Records), "error", err)
			return reply(http.StatusInternalServerError, "Batch processing failed"), nil
		}
		return reply(http.StatusOK, "Batch processed successfully"), nil
	}
}

func authorizer(gate *auth.Gate) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		header := req.Headers["Authorization"]
		if header == "" {
			header = req.Headers["authorization"]
		}
		_, err := gate.Check(header)
		status, msg := auth.Reply(err)
		return reply(status, msg), nil
	}
}
