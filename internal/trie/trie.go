// Package trie implements the shared prefix tree behind the trie server.
//
// A single Trie is created at startup and shared by every request. Mutating
// operations (Add, Delete, Reset) hold the write lock for their full duration,
// including dead-branch pruning, so readers never observe a half-applied change.
package trie

import (
	"fmt"
	"sort"
	"sync"
)

// Trie is a concurrency-safe set of words stored as a prefix tree
type Trie struct {
	mu    sync.RWMutex
	root  *Node
	words int
	nodes int
}

// New creates a new empty trie
func New() *Trie {
	return &Trie{
		root: newNode(),
	}
}

// Add stores word in the trie. Adding a word that is already present succeeds
// with StatusExists and leaves the trie unchanged.
func (t *Trie) Add(word string) (Result, error) {
	if err := validateWord(word); err != nil {
		return Result{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	for _, ch := range word {
		child, exists := node.children[ch]
		if !exists {
			child = newNode()
			node.children[ch] = child
			t.nodes++
		}
		node = child
	}

	if node.isEndOfWord {
		return Result{
			Status:  StatusExists,
			Message: fmt.Sprintf("%s already exists in the trie", word),
		}, nil
	}

	node.isEndOfWord = true
	t.words++
	return Result{
		Status:  StatusAdded,
		Message: fmt.Sprintf("%s was added to the trie", word),
	}, nil
}

// Delete removes word from the trie and prunes every node that no longer
// leads to a stored word. A word that was never added yields StatusNotFound
// and no mutation.
func (t *Trie) Delete(word string) (Result, error) {
	if err := validateWord(word); err != nil {
		return Result{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// path[i] is the parent of the node reached by runes[i]
	runes := []rune(word)
	path := make([]*Node, 0, len(runes))

	node := t.root
	for _, ch := range runes {
		child, exists := node.children[ch]
		if !exists {
			return notFound(word), nil
		}
		path = append(path, node)
		node = child
	}

	if !node.isEndOfWord {
		return notFound(word), nil
	}

	node.isEndOfWord = false
	t.words--

	for i := len(runes) - 1; i >= 0; i-- {
		if !node.isDead() {
			break
		}
		parent := path[i]
		delete(parent.children, runes[i])
		t.nodes--
		node = parent
	}

	return Result{
		Status:  StatusDeleted,
		Message: fmt.Sprintf("%s was deleted from the trie", word),
	}, nil
}

// Search reports whether word is stored. A path that only exists as a prefix
// of longer words is not a match.
func (t *Trie) Search(word string) (Result, error) {
	if err := validateWord(word); err != nil {
		return Result{}, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.findNode(word)
	if node == nil || !node.isEndOfWord {
		return notFound(word), nil
	}
	return Result{
		Status:  StatusFound,
		Message: fmt.Sprintf("%s was found in the trie", word),
	}, nil
}

// Autocomplete returns every stored word that starts with prefix, in
// lexicographic order. The prefix itself is included when it is a stored word.
// An unknown prefix is not an error; it produces an empty match list.
func (t *Trie) Autocomplete(prefix string) (Result, error) {
	if err := validateWord(prefix); err != nil {
		return Result{}, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	words := []string{}
	if node := t.findNode(prefix); node != nil {
		words = collectWords(node, prefix, words)
	}

	var msg string
	switch len(words) {
	case 0:
		msg = fmt.Sprintf("No words start with %s", prefix)
	case 1:
		msg = fmt.Sprintf("1 word starts with %s", prefix)
	default:
		msg = fmt.Sprintf("%d words start with %s", len(words), prefix)
	}

	return Result{
		Status:  StatusMatched,
		Message: msg,
		Words:   words,
	}, nil
}

// Display lists every stored word in lexicographic order
func (t *Trie) Display() Result {
	t.mu.RLock()
	defer t.mu.RUnlock()

	words := collectWords(t.root, "", make([]string, 0, t.words))
	if len(words) == 0 {
		return Result{
			Status:  StatusEmpty,
			Message: "The trie is empty",
			Words:   words,
		}
	}
	return Result{
		Status:  StatusListed,
		Message: fmt.Sprintf("The trie contains %d words", len(words)),
		Words:   words,
	}
}

// Reset discards every node except a fresh root
func (t *Trie) Reset() Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.root = newNode()
	t.words = 0
	t.nodes = 0
	return Result{
		Status:  StatusReset,
		Message: "The trie was reset",
	}
}

// Len returns the number of stored words
func (t *Trie) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.words
}

// NodeCount returns the number of nodes below the root
func (t *Trie) NodeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodes
}

// findNode returns the node corresponding to the key, or nil if not found.
// Callers must hold the lock.
func (t *Trie) findNode(key string) *Node {
	node := t.root
	for _, ch := range key {
		child, exists := node.children[ch]
		if !exists {
			return nil
		}
		node = child
	}
	return node
}

// collectWords appends every word at or below node to results, visiting
// children in ascending code point order so output is lexicographic.
func collectWords(node *Node, prefix string, results []string) []string {
	if node.isEndOfWord {
		results = append(results, prefix)
	}

	children := make([]rune, 0, len(node.children))
	for ch := range node.children {
		children = append(children, ch)
	}
	sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })

	for _, ch := range children {
		results = collectWords(node.children[ch], prefix+string(ch), results)
	}
	return results
}

func notFound(word string) Result {
	return Result{
		Status:  StatusNotFound,
		Message: fmt.Sprintf("%s was not found in the trie", word),
	}
}
