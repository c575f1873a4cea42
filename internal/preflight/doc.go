// Package preflight validates filesystem paths before a conversion run
// touches them.
//
// CheckRoot runs before every walk and its failure is fatal to the run.
// CheckDirectoryAccess backs the `config validate` report.
package preflight
