package models

// Stock is the available count of one product. Writes overwrite.
type Stock struct {
	ProductID string `json:"product_id" dynamodbav:"product_id"`
	Count     int    `json:"count"      dynamodbav:"count"`
}
