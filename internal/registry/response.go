package registry

import (
	"encoding/json"
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Response is a raw GraphQL response. Data keeps each root field undecoded
// so callers pick the shape they expect.
type Response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors gqlerror.List              `json:"errors,omitempty"`
}

// connection is the relay-style collection every registry root field returns
type connection[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

// ValidateResponse fails when resp carries an error list, when the
// collection at root has no edges, or when its first edge has no node.
func ValidateResponse(resp *Response, root string) error {
	if resp == nil {
		return fmt.Errorf("%w: no response", ErrEmptyResult)
	}
	if len(resp.Errors) > 0 {
		return &GraphQLError{Errors: resp.Errors}
	}
	raw, ok := resp.Data[root]
	if !ok || isNull(raw) {
		return fmt.Errorf("%w: %s missing from response", ErrEmptyResult, root)
	}
	var conn connection[json.RawMessage]
	if err := json.Unmarshal(raw, &conn); err != nil {
		return fmt.Errorf("decode %s: %w", root, err)
	}
	if len(conn.Edges) == 0 {
		return fmt.Errorf("%w: %s has no edges", ErrEmptyResult, root)
	}
	if isNull(conn.Edges[0].Node) {
		return fmt.Errorf("%w: first %s edge has no node", ErrEmptyResult, root)
	}
	return nil
}

// firstNode validates resp against root and decodes the first edge's node
func firstNode[T any](resp *Response, root string) (T, error) {
	var zero T
	if err := ValidateResponse(resp, root); err != nil {
		return zero, err
	}
	var conn connection[T]
	if err := json.Unmarshal(resp.Data[root], &conn); err != nil {
		return zero, fmt.Errorf("decode %s: %w", root, err)
	}
	return conn.Edges[0].Node, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
