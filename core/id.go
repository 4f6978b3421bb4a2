package core

import (
	"strconv"
	"strings"

	"pkt.systems/tabula/schema"
)

// idGenerator hands out document ids and untitled numbers. Neither counter is
// ever reset or reused within a process.
type idGenerator struct {
	next     schema.DocumentID
	untitled int
}

func newIDGenerator() *idGenerator {
	return &idGenerator{untitled: 1}
}

func (g *idGenerator) document() schema.DocumentID {
	id := g.next
	g.next++
	return id
}

func (g *idGenerator) untitledNumber() int {
	n := g.untitled
	g.untitled++
	return n
}

// observe moves the document counter past id.
func (g *idGenerator) observe(id schema.DocumentID) {
	if id >= g.next {
		g.next = id + 1
	}
}

// observeLabel moves the untitled counter past a restored Untitled-N label.
func (g *idGenerator) observeLabel(prefix, label string) {
	if prefix == "" || !strings.HasPrefix(label, prefix) {
		return
	}
	n, err := strconv.Atoi(strings.TrimPrefix(label, prefix))
	if err != nil || n < 1 {
		return
	}
	if n >= g.untitled {
		g.untitled = n + 1
	}
}
