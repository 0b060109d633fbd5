package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/events"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/notification"
	"github.com/shashiranjanraj/shopfront/pkg/queue"
)

// ProductCreatedSubject is the subject of every product-created notification.
const ProductCreatedSubject = "AWS Project - New Product Created"

// BatchResult counts what Process did.
type BatchResult struct {
	Created int
	Skipped int
}

// CatalogBatchService turns Ingest Messages into products, stock and
// notifications.
type CatalogBatchService struct {
	products  ProductRepo
	stock     StockRepo
	publisher notification.Publisher
	topic     string
}

func NewCatalogBatchService(products ProductRepo, stock StockRepo, pub notification.Publisher, topic string) *CatalogBatchService {
	return &CatalogBatchService{products: products, stock: stock, publisher: pub, topic: topic}
}

// Process handles msgs in order. Malformed messages (bad JSON, no id or no
// name, a price or count that is not a valid number) are logged and skipped. Any store or notification failure stops
// the batch and is returned; writes already made stay.
func (s *CatalogBatchService) Process(ctx context.Context, msgs []queue.Message) (BatchResult, error) {
	var res BatchResult
	log := logger.WithCtx(ctx)

	for _, m := range msgs {
		item, err := decodeIngest(m.Body)
		if err != nil {
			log.Warn("catalog batch: message skipped", "message_id", m.ID, "error", err)
			res.Skipped++
			continue
		}

		if err := s.apply(ctx, item); err != nil {
			log.Error("catalog batch: failed", "message_id", m.ID, "product_id", item.msg.ID, "error", err)
			return res, err
		}
		res.Created++
	}

	log.Info("catalog batch: processed", "created", res.Created, "skipped", res.Skipped)
	return res, nil
}

// Handle adapts Process to queue.Handler.
func (s *CatalogBatchService) Handle(ctx context.Context, msgs []queue.Message) error {
	_, err := s.Process(ctx, msgs)
	return err
}

// HandleSQSEvent processes a batch delivered by the SQS event source.
func (s *CatalogBatchService) HandleSQSEvent(ctx context.Context, ev events.SQSEvent) (BatchResult, error) {
	msgs := make([]queue.Message, 0, len(ev.Records))
	for _, r := range ev.Records {
		msgs = append(msgs, queue.Message{ID: r.MessageId, Body: []byte(r.Body), Receipt: r.ReceiptHandle})
	}
	return s.Process(ctx, msgs)
}

// ingestItem is a decoded message with both records already validated.
type ingestItem struct {
	msg     models.IngestMessage
	product models.Product
	stock   models.Stock
}

func decodeIngest(body []byte) (ingestItem, error) {
	var it ingestItem
	if err := json.Unmarshal(body, &it.msg); err != nil {
		return it, apperr.Malformed("decode ingest message", err)
	}
	if it.msg.ID == "" || it.msg.Name == "" {
		return it, apperr.Malformed("ingest message needs id and name", errors.New("missing id or name"))
	}

	var err error
	if it.product, err = it.msg.Product(); err != nil {
		return it, apperr.Malformed("price", err)
	}
	if it.stock, err = it.msg.Stock(); err != nil {
		return it, apperr.Malformed("count", err)
	}
	return it, nil
}

func (s *CatalogBatchService) apply(ctx context.Context, it ingestItem) error {
	if err := s.products.Save(ctx, it.product); err != nil {
		return apperr.Upstream("put product", err)
	}
	if err := s.stock.Save(ctx, it.stock); err != nil {
		return apperr.Upstream("put stock", err)
	}

	body, err := json.Marshal(it.msg)
	if err != nil {
		return apperr.Upstream("encode notification", err)
	}
	if err := s.publisher.Publish(ctx, s.topic, ProductCreatedSubject, string(body)); err != nil {
		return apperr.Upstream("publish notification", err)
	}
	return nil
}
