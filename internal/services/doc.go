// Package services defines shared utilities consumed by the conversion
// pipeline and the codec wrappers beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, job IDs, and stage names for logging.
//   - The error taxonomy (PathError, ArchiveError, ImageError, FilesystemError)
//     with kind markers that callers match through errors.Is.
//
// The archive and webp subpackages wrap the external codecs behind small
// interfaces so the pipeline can be exercised with fakes in tests.
package services
