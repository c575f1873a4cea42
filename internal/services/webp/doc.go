// Package webp transcodes source images to WebP. Decoding goes through
// disintegration/imaging; encoding goes through libwebp via kolesa-team/go-webp,
// so building this package requires cgo and the libwebp headers.
package webp
