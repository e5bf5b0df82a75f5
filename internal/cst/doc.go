// Package cst provides a concrete syntax tree for Python sources.
//
// # Purpose
//
//   - Parse Python text with the tree-sitter Python grammar and detach the
//     result into an immutable Go tree (Node values that own no C memory).
//   - Keep the tree lossless: every node is a byte span over the original
//     source, so an untouched tree prints back byte-for-byte and a rewritten
//     file only differs inside the edited spans.
//   - Offer a position provider (Tree.Position) instead of storing line and
//     column on nodes.
//   - Offer a walk that threads an explicit Context (parent, field, depth)
//     down to every node; consumers never look parents up by node identity.
//
// # Scope
//
// The package knows nothing about icecream, rules, or fixes. Matching lives
// in internal/rules and rewriting in internal/fix.
//
// # Failure model
//
// tree-sitter is error tolerant and always produces a tree. Parse treats any
// ERROR or MISSING node as a failure and returns ErrSyntax, so callers can
// leave such files alone instead of rewriting a partially understood tree.
package cst
