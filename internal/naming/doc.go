// Package naming maps archive entries and archives to their converted names.
//
// NameFor flattens an extracted image path to a bare output filename and
// applies the cover rule, so the distinguished cover page always sorts first
// in the rebuilt archive. OutputArchiveName derives the converted archive's
// filename from the source archive's. Both are pure functions of their input
// and the Policy they are called on.
package naming
