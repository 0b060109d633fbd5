// Command lambda runs one shopfront handler on AWS Lambda. SHOPFRONT_HANDLER
// picks it:
//
//	importFileParser     S3 "object created" events on the import bucket
//	catalogBatchProcess  SQS batches from the ingest queue
//	basicAuthorizer      API Gateway requests carrying Basic credentials
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/shashiranjanraj/shopfront/internal/kernel"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

func main() {
	name := os.Getenv("SHOPFRONT_HANDLER")

	if name == "basicAuthorizer" {
		lambda.Start(authorizer(auth.NewGate()))
		return
	}

	app, err := kernel.Boot(context.Background())
	if err != nil {
		logger.Error("lambda: boot failed", "error", err)
		os.Exit(1)
	}

	h, err := handlerFor(name, app)
	if err != nil {
		logger.Error("lambda: no handler", "handler", name, "error", err)
		os.Exit(1)
	}
	lambda.Start(h)
}
