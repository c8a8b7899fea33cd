// Package internal provides the rewrite engine that simplifies statement
// trees to a fixed point.
//
// A tree document is decoded into an arena tree (package tree). On every
// pass the Engine walks the tree in pre-order and asks the rewrite rules,
// in priority order, whether the node can be simplified. Each candidate
// covers a span of statements (package span); candidates that overlap an
// already accepted one are merged into it or dropped, so the accepted
// rewrites of a pass never touch the same statements. The accepted
// rewrites are applied together, and passes repeat until one changes
// nothing or the pass cap is reached.
//
// Key components:
//
// Engine: holds the rules, their severities and the ignored rules. It
// reports the opportunities of a tree as issues and applies them.
//
// RewriteRule: a detector from package rules with a name and a severity.
//
// Cache: remembers the issues of unchanged documents between runs.
//
// Watcher: rescans documents as they are saved.
//
// Usage:
//
//	engine := internal.NewEngine(nil)
//	issues, err := engine.Run("path/to/doc.yaml")
//	if err != nil {
//	    // handle error
//	}
//
//	t, err := treeio.Load("path/to/doc.yaml")
//	if err != nil {
//	    // handle error
//	}
//	passes, err := engine.ApplyFixpoint(t)
//
// Issues can be silenced with "# nolint" or "# nolint:rule" comments in
// the document.
package internal
