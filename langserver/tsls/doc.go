// Package tsls drives a TypeScript language server over stdio and exposes
// its hover results as a type oracle.
//
// The server is started per run with the configured command (by default
// typescript-language-server --stdio). The script text is written to a
// scratch workspace and opened as a document; parameter and return types
// are read from textDocument/hover at the identifier's position.
//
// Every failure to start or initialise the server degrades to "no oracle"
// and the pipeline continues with syntactic inference.
package tsls
