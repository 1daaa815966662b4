package statementcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/miniprog/graphql-request/internal/shorthand"
	"github.com/miniprog/graphql-request/types"
)

// KeyPrefix starts every statement cache key.
const KeyPrefix = "gql:"

var canonical = jsoniter.ConfigCompatibleWithStandardLibrary

type keySource struct {
	Type    types.OperationType `json:"type"`
	Queries []string            `json:"queries"`
	Node    *string             `json:"node,omitempty"`
	Nodes   map[string]string   `json:"nodes,omitempty"`
}

// Key derives the cache key of a compile input. Shorthand order is
// significant; response-node map order is not.
func Key(kind types.OperationType, queries []string, sel shorthand.Selection) (string, error) {
	src := keySource{Type: kind, Queries: queries}
	switch s := sel.(type) {
	case shorthand.Node:
		node := string(s)
		src.Node = &node
	case shorthand.Nodes:
		src.Nodes = s
	case nil:
	default:
		return "", fmt.Errorf("statement cache: unsupported selection %T", sel)
	}
	encoded, err := canonical.Marshal(src)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return KeyPrefix + hex.EncodeToString(sum[:]), nil
}
