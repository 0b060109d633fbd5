package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// MaxStockCount bounds a stock count carried in an Ingest Message.
const MaxStockCount = math.MaxInt32

// IngestMessage is one CSV row on its way from the import parser to the batch
// consumer: a Product and its Stock flattened into a single JSON object.
//
// Price and Count decode from JSON numbers or numeric strings ("10.99", "5").
type IngestMessage struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Count       json.Number `json:"count"`
}

// UnmarshalJSON accepts price and count as either numbers or strings.
func (m *IngestMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       json.RawMessage `json:"price"`
		Count       json.RawMessage `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	price, err := number(raw.Price)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	count, err := number(raw.Count)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}

	*m = IngestMessage{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Price:       price,
		Count:       count,
	}
	return nil
}

func number(raw json.RawMessage) (json.Number, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var n json.Number
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		n = json.Number(s)
	} else if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}

	if n == "" {
		return "", nil
	}
	if _, err := n.Float64(); err != nil {
		return "", fmt.Errorf("%q is not a number", string(n))
	}
	return n, nil
}

// Product returns the product half of the message.
func (m IngestMessage) Product() (Product, error) {
	price, err := m.floatPrice()
	if err != nil {
		return Product{}, err
	}
	return Product{ID: m.ID, Name: m.Name, Description: m.Description, Price: price}, nil
}

// Stock returns the stock half of the message. The count must be a whole
// number no larger in magnitude than MaxStockCount; "5.0" is accepted.
func (m IngestMessage) Stock() (Stock, error) {
	if m.Count == "" {
		return Stock{ProductID: m.ID}, nil
	}
	f, err := m.Count.Float64()
	if err != nil {
		return Stock{}, fmt.Errorf("count: %w", err)
	}
	if f != math.Trunc(f) || math.Abs(f) > MaxStockCount {
		return Stock{}, fmt.Errorf("count: %q is not a whole number within range", string(m.Count))
	}
	return Stock{ProductID: m.ID, Count: int(f)}, nil
}

func (m IngestMessage) floatPrice() (float64, error) {
	if m.Price == "" {
		return 0, nil
	}
	p, err := m.Price.Float64()
	if err != nil {
		return 0, fmt.Errorf("price: %w", err)
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("price: %q is not a finite number", string(m.Price))
	}
	return p, nil
}
