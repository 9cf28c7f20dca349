package types

import (
	"fmt"
)

// Operation names one of the six trie operations exposed over the wire
type Operation string

const (
	// OperationAdd stores a word
	OperationAdd Operation = "add"
	// OperationDelete removes a word
	OperationDelete Operation = "delete"
	// OperationSearch checks whether a word is stored
	OperationSearch Operation = "search"
	// OperationAutocomplete lists stored words with a prefix
	OperationAutocomplete Operation = "autocomplete"
	// OperationDisplay lists every stored word
	OperationDisplay Operation = "display"
	// OperationReset clears the trie
	OperationReset Operation = "reset"
)

// Operations lists every operation in help-text order
var Operations = []Operation{
	OperationAdd,
	OperationDelete,
	OperationSearch,
	OperationAutocomplete,
	OperationDisplay,
	OperationReset,
}

// NeedsWord reports whether the operation takes a word argument
func (o Operation) NeedsWord() bool {
	return o != OperationDisplay && o != OperationReset
}

// ParseOperation converts a name into an Operation
func ParseOperation(name string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == name {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", name)
}

// RequestIDHeader carries the request ID between the CLI and the server
const RequestIDHeader = "X-Request-ID"

// StatusInvalidInput is reported when the request carried an empty or malformed word
const StatusInvalidInput = "INVALID_INPUT"

// WordRequest is the JSON body of the word-taking operations
type WordRequest struct {
	SpecifiedWord string `json:"specifiedWord"`
}

// Response is the JSON body returned by every trie operation
type Response struct {
	Succeeded bool     `json:"succeeded"`
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Words     []string `json:"words,omitempty"`
}
