package turns

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/awalterschulze/gographviz"
	"github.com/clonium/clonium/game"
)

// NodeInfo is a read-only copy of a node of the tree.
type NodeInfo struct {
	Kind     Kind
	Player   game.PlayerID // NoPlayer for End and Unknown
	Depth    int           // distance from the focus
	Order    []game.PlayerID
	Moves    []game.Pos // Moves[i] leads to Children[i]
	Children []NodeInfo
}

// Snapshot is a read-only copy of the tree.
type Snapshot struct {
	Ply       int
	Focus     NodeInfo
	Unknowns  int
	Scheduled int
	Computing bool
}

// Snapshot copies the tree. A closed tree returns an empty Snapshot.
func (t *Tree) Snapshot() Snapshot {
	if err := t.view(); err != nil {
		return Snapshot{}
	}
	defer t.unview()
	return Snapshot{
		Ply:       t.ply,
		Focus:     t.info(t.focus(), 0),
		Unknowns:  t.unknowns.len(),
		Scheduled: t.scheduled.len(),
		Computing: t.computing.isValid(),
	}
}

func (t *Tree) info(h handle, depth int) NodeInfo {
	l := t.linkOf(h)
	retVal := NodeInfo{
		Kind:   l.kind(),
		Player: l.player(),
		Depth:  depth,
		Order:  t.transOf(h).Order,
	}
	switch l := l.(type) {
	case humanLink:
		retVal.Moves = l.moves
	case computedLink:
		retVal.Moves = []game.Pos{l.pos}
	}
	for _, kid := range t.children(h) {
		retVal.Children = append(retVal.Children, t.info(kid, depth+1))
	}
	return retVal
}

// Walk visits the snapshot depth first. fn returning false stops the descent into that node.
func (n NodeInfo) Walk(fn func(n NodeInfo) bool) {
	if !fn(n) {
		return
	}
	for _, kid := range n.Children {
		kid.Walk(fn)
	}
}

// Dump returns a human readable rendering of the tree and its queues.
func (t *Tree) Dump() string {
	if err := t.view(); err != nil {
		return err.Error()
	}
	defer t.unview()
	return t.dump()
}

func (t *Tree) dump() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ply = %d\nStart:\n", t.ply)
	t.dumpNode(&buf, t.focus(), 1)
	if t.computing.isValid() {
		fmt.Fprintf(&buf, "computing = %d %v\n", t.computing, t.linkOf(t.computing))
	} else {
		fmt.Fprint(&buf, "computing = nil\n")
	}
	dumpQueue := func(name string, f frontier) {
		fmt.Fprintf(&buf, "%s = [", name)
		for i, e := range f.entries() {
			if i > 0 {
				fmt.Fprint(&buf, ", ")
			}
			fmt.Fprintf(&buf, "%d@%d", e.node, e.depth)
		}
		fmt.Fprint(&buf, "]\n")
	}
	dumpQueue("scheduled", t.scheduled)
	dumpQueue("unknowns", t.unknowns)
	return buf.String()
}

func (t *Tree) dumpNode(buf *bytes.Buffer, h handle, indent int) {
	pad := strings.Repeat("  ", indent)
	if !h.isValid() || int(h) >= len(t.nodes) || !t.nodes[h].valid {
		fmt.Fprintf(buf, "%s<invalid node %d>\n", pad, h)
		return
	}
	l := t.linkOf(h)
	fmt.Fprintf(buf, "%s%d: %v\n", pad, h, l)
	switch l := l.(type) {
	case humanLink:
		for _, m := range l.moves {
			fmt.Fprintf(buf, "%s  %v ->\n", pad, m)
			t.dumpNode(buf, l.nexts[m], indent+2)
		}
	case computedLink:
		t.dumpNode(buf, l.next, indent+1)
	}
}

// ToDot renders the tree in the DOT format.
func (t *Tree) ToDot() (string, error) {
	if err := t.view(); err != nil {
		return "", err
	}
	defer t.unview()

	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	var walk func(h handle, depth int) error
	walk = func(h handle, depth int) error {
		l := t.linkOf(h)
		buf.Reset()
		err := tmpl.Execute(&buf, dotNode{
			ID:     int(h),
			Kind:   l.kind(),
			Player: l.player(),
			Depth:  depth,
			Board:  boardRows(t.transOf(h).Board),
		})
		if err != nil {
			return err
		}
		attrs := map[string]string{
			"fontname": "Monaco",
			"shape":    "none",
			"label":    buf.String(),
		}
		if err := g.AddNode("G", nodeName(h), attrs); err != nil {
			return err
		}

		var moves []game.Pos
		switch l := l.(type) {
		case humanLink:
			moves = l.moves
		case computedLink:
			moves = []game.Pos{l.pos}
		}
		for i, kid := range t.children(h) {
			if err := walk(kid, depth+1); err != nil {
				return err
			}
			label := fmt.Sprintf("%q", fmt.Sprintf("%v", moves[i]))
			if err := g.AddEdge(nodeName(h), nodeName(kid), true, map[string]string{"label": label}); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t.focus(), 0); err != nil {
		return "", err
	}
	return g.String(), nil
}

func nodeName(h handle) string { return fmt.Sprintf("n%d", h) }

type dotNode struct {
	ID     int
	Kind   Kind
	Player game.PlayerID
	Depth  int
	Board  []string
}

func boardRows(b game.Board) []string {
	s := strings.TrimRight(fmt.Sprintf("%v", b), "\n")
	return strings.Split(s, "\n")
}

const tmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>Node ID</TD><TD>{{.ID}}</TD></TR>
<TR><TD>Kind</TD><TD>{{.Kind}}</TD></TR>
<TR><TD>Player</TD><TD>{{printf "%v" .Player}}</TD></TR>
<TR><TD>Depth</TD><TD>{{.Depth}}</TD></TR>
<TR><TD>Board</TD><TD>{{range .Board}}{{.}}<BR />{{end}}</TD></TR>
</TABLE>
>
`

var tmpl *template.Template

func init() {
	tmpl = template.Must(template.New("name").Parse(tmplRaw))
}
