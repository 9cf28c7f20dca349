package trie

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidInput is returned when an operation that requires a word receives
// an empty or malformed one.
var ErrInvalidInput = errors.New("invalid input")

// Status is the outcome of a trie operation
type Status string

const (
	// StatusAdded indicates a new word was stored
	StatusAdded Status = "ADDED"
	// StatusExists indicates the word was already stored
	StatusExists Status = "EXISTS"
	// StatusDeleted indicates the word was removed
	StatusDeleted Status = "DELETED"
	// StatusFound indicates the word is stored
	StatusFound Status = "FOUND"
	// StatusNotFound indicates the word is not stored
	StatusNotFound Status = "NOT_FOUND"
	// StatusMatched indicates an autocomplete lookup ran, possibly with no matches
	StatusMatched Status = "MATCHED"
	// StatusListed indicates display returned at least one word
	StatusListed Status = "LISTED"
	// StatusEmpty indicates display found no stored words
	StatusEmpty Status = "EMPTY"
	// StatusReset indicates the trie was cleared
	StatusReset Status = "RESET"
)

// Result is the structured outcome of a trie operation
type Result struct {
	Status  Status
	Message string
	// Words holds autocomplete matches or the display listing
	Words []string
}

// Succeeded reports whether the operation had a positive outcome.
// A missing word is a normal negative result, not an error.
func (r Result) Succeeded() bool {
	return r.Status != StatusNotFound
}

func validateWord(word string) error {
	if word == "" {
		return fmt.Errorf("%w: word must not be empty", ErrInvalidInput)
	}
	if !utf8.ValidString(word) {
		return fmt.Errorf("%w: word %q is not valid UTF-8", ErrInvalidInput, word)
	}
	return nil
}
