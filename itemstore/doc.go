// Package itemstore holds the item model and the storage backends used by the
// crud handler. Items live in a single table keyed by the string attribute
// "id"; every other attribute is schema-less and passed through untouched.
//
// Two Store implementations are provided: DynamoStore, which talks to a
// dynamodb table through dynamodbiface.DynamoDBAPI, and MemoryStore, which
// keeps documents in process memory for tests and local development.
package itemstore
