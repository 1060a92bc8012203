package handlers

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const createPaymentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["amount"],
  "properties": {
    "type": { "type": "string", "maxLength": 100 },
    "requestCode": { "type": "string", "pattern": "^[A-Za-z0-9]{0,100}$" },
    "orderCode": { "type": "string", "maxLength": 255 },
    "amount": {
      "type": ["number", "string"],
      "minimum": 0,
      "pattern": "^[0-9]+(\\.[0-9]+)?$"
    },
    "vnpData": { "type": "object", "additionalProperties": { "type": "string" } },
    "data": { "type": "object", "additionalProperties": { "type": "string" } },
    "returnUrl": { "type": "string" }
  },
  "additionalProperties": false
}`

const queryPaymentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["transactionDate"],
  "properties": {
    "orderCode": { "type": "string" },
    "transactionDate": { "type": "string", "pattern": "^[0-9]{14}$" }
  },
  "additionalProperties": false
}`

var (
	createPaymentLoader = gojsonschema.NewStringLoader(createPaymentSchema)
	queryPaymentLoader  = gojsonschema.NewStringLoader(queryPaymentSchema)
)

func validateJSONSchema(schemaLoader gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			messages = append(messages, e.String())
		}
		return fmt.Errorf("request does not conform to schema: %s", strings.Join(messages, "; "))
	}

	return nil
}
