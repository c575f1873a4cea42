// Package conversion drives one archive through extraction, concurrent WebP
// transcoding, repacking, workspace cleanup and relocation of the original.
//
// Every job owns a uniquely named scratch workspace beside its archive. The
// workspace is removed on every exit path; the converted archive is only
// written once every image has transcoded successfully, and the original is
// only moved after the converted archive exists.
package conversion
