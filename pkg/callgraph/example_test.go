package callgraph_test

import (
	"fmt"

	"github.com/matzehuels/callviz/pkg/callgraph"
)

func ExampleSimplify() {
	fmt.Println(callgraph.Simplify("<com.example.Book: void <init>(java.lang.String)>"))
	fmt.Println(callgraph.Simplify("<com.example.Book: int pages()>"))
	// Output:
	// Book.<init>
	// Book.pages
}

func ExampleParse() {
	raw := `digraph G {
"<a.Shelf: void add(a.Book)>"->"<a.Book: int pages()>"[label="2"];
}`
	nodes, edges := callgraph.Parse(raw)
	g := callgraph.New(nodes, edges)

	for _, c := range g.SortedClusters() {
		fmt.Println(c.Class, len(c.Nodes))
	}
	fmt.Println(edges[0].Label)
	// Output:
	// Book 1
	// Shelf 1
	// 2
}
