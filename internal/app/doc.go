// Package app contains the core application logic. It wires a graph
// document, the node modules, the engine and its collaborators into a
// prototype session, decoupled from any specific entrypoint like a CLI.
package app
