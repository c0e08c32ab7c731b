package graphql

import (
	"encoding/json"
	"fmt"
)

// PageInfo carries cursor-pagination state for a connection.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor,omitempty"`
	EndCursor       *string `json:"endCursor,omitempty"`
}

// Edge wraps a single node with its pagination cursor.
type Edge[T any] struct {
	Node   T       `json:"node"`
	Cursor *string `json:"cursor,omitempty"`
}

// Connection is a Relay-style page of results.
type Connection[T any] struct {
	Edges      []Edge[T] `json:"edges"`
	PageInfo   PageInfo  `json:"pageInfo"`
	TotalCount *int      `json:"totalCount,omitempty"`
}

// Nodes returns the nodes of all edges in order.
func (c *Connection[T]) Nodes() []T {
	nodes := make([]T, len(c.Edges))
	for i, edge := range c.Edges {
		nodes[i] = edge.Node
	}
	return nodes
}

// DecodeConnection extracts and decodes the connection found at data[key].
// A missing or null entry decodes to an empty connection rather than an
// error, since backends omit the key when nothing matches.
func DecodeConnection[T any](data map[string]any, key string) (*Connection[T], error) {
	conn := &Connection[T]{Edges: []Edge[T]{}}

	raw, ok := data[key]
	if !ok || raw == nil {
		return conn, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encoding %s connection: %w", key, err)
	}
	if err := json.Unmarshal(encoded, conn); err != nil {
		return nil, fmt.Errorf("decoding %s connection: %w", key, err)
	}
	if conn.Edges == nil {
		conn.Edges = []Edge[T]{}
	}
	return conn, nil
}
