// Package main hosts the ziptowebp CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, then hands the root
// folder to the walker as an explicit value. Conversion logic lives in the
// internal packages; commands here only wire collaborators, take the run
// lock, and render results.
package main
