/*
SPDX-FileCopyrightText: Copyright (c) 2026 NVIDIA CORPORATION & AFFILIATES. All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

SPDX-License-Identifier: Apache-2.0
*/

package docs

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind discriminates the handful of block shapes the document
// provider needs to render. This is deliberately small: the core only
// ever emits headings, paragraphs, bullet lists, dividers, and callouts.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockListItem  BlockKind = "list_item"
	BlockDivider   BlockKind = "divider"
	BlockCallout   BlockKind = "callout"
)

// Block is one unit appended to a document page.
type Block struct {
	Kind  BlockKind
	Text  string
	Level int // heading level, 1-6; zero for non-headings
}

// Divider is the standalone divider block used between agent sections.
func Divider() Block { return Block{Kind: BlockDivider} }

// Callout builds a callout block, used for the memo page's leading
// "generated on DATE" note and its trailing review warning.
func Callout(text string) Block { return Block{Kind: BlockCallout, Text: text} }

// MarkdownToBlocks walks goldmark's AST for md and emits the block
// sequence a document provider can render, in source order. Inline
// emphasis/links are flattened to their plain text content — the core has
// no need to preserve rich inline formatting.
func MarkdownToBlocks(md string) []Block {
	source := []byte(md)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var blocks []Block
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			blocks = append(blocks, Block{Kind: BlockHeading, Level: node.Level, Text: plainText(node, source)})
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if txt := plainText(node, source); txt != "" {
				blocks = append(blocks, Block{Kind: BlockParagraph, Text: txt})
			}
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if txt := plainText(node, source); txt != "" {
				blocks = append(blocks, Block{Kind: BlockListItem, Text: txt})
			}
			return ast.WalkSkipChildren, nil
		case *ast.ThematicBreak:
			blocks = append(blocks, Divider())
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return blocks
}

// plainText concatenates every text-bearing leaf under n, collapsing soft
// line breaks to single spaces.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch leaf := child.(type) {
		case *ast.Text:
			b.Write(leaf.Segment.Value(source))
			if leaf.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(leaf.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
