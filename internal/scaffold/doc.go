// Package scaffold generates new agent definitions from an embedded
// template. It powers the "subagent init" command: it normalizes the
// requested name, resolves the project or user agents directory, renders
// the template and writes it atomically. Every generated file satisfies the
// validator's hard checks by construction and is re-validated after writing.
package scaffold
