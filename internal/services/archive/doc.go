// Package archive reads and writes the zip containers handled by a conversion
// job. Extraction refuses entries that would land outside the destination and
// building produces byte-stable output for identical inputs.
package archive
