package query

// keyIndex is a trie over canonical key segments. Each node holds the entry
// whose key ends there, so invalidating a prefix touches exactly the entries
// under that node.
type keyIndex struct {
	root *trieNode
	size int
}

type trieNode struct {
	children map[string]*trieNode
	entry    *entry
}

func newKeyIndex() *keyIndex {
	return &keyIndex{root: &trieNode{}}
}

func (t *keyIndex) get(segs []string) *entry {
	n := t.root
	for _, s := range segs {
		next, ok := n.children[s]
		if !ok {
			return nil
		}
		n = next
	}
	return n.entry
}

func (t *keyIndex) insert(segs []string, e *entry) {
	n := t.root
	for _, s := range segs {
		if n.children == nil {
			n.children = make(map[string]*trieNode)
		}
		next, ok := n.children[s]
		if !ok {
			next = &trieNode{}
			n.children[s] = next
		}
		n = next
	}
	if n.entry == nil {
		t.size++
	}
	n.entry = e
}

// remove deletes the entry stored at segs and prunes nodes left empty.
func (t *keyIndex) remove(segs []string) {
	path := make([]*trieNode, 0, len(segs)+1)
	n := t.root
	path = append(path, n)
	for _, s := range segs {
		next, ok := n.children[s]
		if !ok {
			return
		}
		n = next
		path = append(path, n)
	}
	if n.entry == nil {
		return
	}
	n.entry = nil
	t.size--

	for i := len(path) - 1; i > 0; i-- {
		node := path[i]
		if node.entry != nil || len(node.children) > 0 {
			break
		}
		delete(path[i-1].children, segs[i-1])
	}
}

// walk calls fn for every entry whose key extends prefix.
func (t *keyIndex) walk(prefix []string, fn func(*entry)) {
	n := t.root
	for _, s := range prefix {
		next, ok := n.children[s]
		if !ok {
			return
		}
		n = next
	}
	var visit func(*trieNode)
	visit = func(node *trieNode) {
		if node.entry != nil {
			fn(node.entry)
		}
		for _, child := range node.children {
			visit(child)
		}
	}
	visit(n)
}

func (t *keyIndex) count() int {
	return t.size
}
