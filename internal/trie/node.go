package trie

// Node represents one character position in the trie
type Node struct {
	// children maps the next character to the child node
	children map[rune]*Node

	// isEndOfWord marks that the path from the root to this node spells a stored word
	isEndOfWord bool
}

// newNode creates a new trie node
func newNode() *Node {
	return &Node{
		children: make(map[rune]*Node),
	}
}

// isDead reports whether the node no longer represents any word or prefix
func (n *Node) isDead() bool {
	return !n.isEndOfWord && len(n.children) == 0
}

// count returns the number of nodes in the subtree below n
func (n *Node) count() int {
	total := 0
	for _, child := range n.children {
		total += 1 + child.count()
	}
	return total
}
