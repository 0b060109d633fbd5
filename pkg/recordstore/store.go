// Package recordstore is the key-value record store behind the product and
// stock tables. Items are plain structs; the dynamodb driver encodes them
// through `dynamodbav` tags, the sql and memory drivers through `json` tags.
package recordstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/shopfront/config"
)

// Store is implemented by every driver.
type Store interface {
	// Get loads the item whose key attribute equals key into dest.
	// found is false (and dest untouched) when no such item exists.
	Get(ctx context.Context, table, key string, dest any) (found bool, err error)

	// Put writes item, replacing any item with the same key.
	Put(ctx context.Context, table string, item any) error

	// Scan loads every item of table into dest, which must be a pointer to a slice.
	Scan(ctx context.Context, table string, dest any) error
}

// Schema maps a table name to the name of its key attribute.
type Schema map[string]string

// DefaultSchema is built from PRODUCTS_TABLE_NAME and STOCK_TABLE_NAME.
func DefaultSchema() Schema {
	return Schema{
		config.ProductsTable(): "id",
		config.StockTable():    "product_id",
	}
}

// KeyAttr returns the key attribute of table.
func (s Schema) KeyAttr(table string) (string, error) {
	attr, ok := s[table]
	if !ok {
		return "", fmt.Errorf("recordstore: unknown table %q", table)
	}
	return attr, nil
}

// keyOf extracts the key value of item through its JSON form.
func (s Schema) keyOf(table string, item any) (string, []byte, error) {
	attr, err := s.KeyAttr(table)
	if err != nil {
		return "", nil, err
	}

	body, err := json.Marshal(item)
	if err != nil {
		return "", nil, fmt.Errorf("recordstore: encode item: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", nil, fmt.Errorf("recordstore: item for %s is not an object: %w", table, err)
	}

	key, _ := fields[attr].(string)
	if key == "" {
		return "", nil, fmt.Errorf("recordstore: item for %s has no %q", table, attr)
	}
	return key, body, nil
}

// decodeBodies unmarshals a list of JSON objects into dest (*[]T).
func decodeBodies(bodies [][]byte, dest any) error {
	raw := make([]json.RawMessage, len(bodies))
	for i, b := range bodies {
		raw[i] = b
	}
	all, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(all, dest)
}
