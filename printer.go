/*
   Copyright 2024 Arborist Labs

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package behaviortree

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xlab/treeprint"
)

// Printer renders a Node tree to output, in the style of the teacher's
// Printer/TreePrinter pair.
type Printer interface {
	Fprint(output io.Writer, node *Node) error
}

// treePrinter is this package's Printer implementation, built on
// github.com/xlab/treeprint as the teacher's printer.go is.
type treePrinter struct{}

// DefaultPrinter renders each node as "name [status] (ticks=N)".
var DefaultPrinter Printer = treePrinter{}

func (treePrinter) Fprint(output io.Writer, node *Node) error {
	tree := treeprint.New()
	buildPrintTree(tree, node)
	_, err := output.Write(tree.Bytes())
	return err
}

func buildPrintTree(tree treeprint.Tree, node *Node) {
	if node == nil {
		tree.AddNode("<nil>")
		return
	}
	label := fmt.Sprintf("%s [%s] (ticks=%d)", node.Name(), node.Status(), node.Metadata().TotalTicks)
	if len(node.Children()) == 0 {
		tree.AddNode(label)
		return
	}
	branch := tree.AddBranch(label)
	for _, c := range node.Children() {
		buildPrintTree(branch, c)
	}
}

// String renders node using DefaultPrinter, swallowing any write error
// into the returned string (there is no io.Writer failure mode for an
// in-memory buffer).
func String(node *Node) string {
	var b bytes.Buffer
	_ = DefaultPrinter.Fprint(&b, node)
	return b.String()
}
