// Package walker finds archives under a root directory and converts them one
// at a time.
//
// Discovery happens up front and is sorted lexicographically, so the order is
// stable across platforms and is not disturbed by jobs relocating archives
// mid-walk. Bookkeeping directories (Output, Converted_Zip and job
// workspaces) are pruned, which keeps a re-run from picking up converted
// output or already relocated originals. A failing job is recorded and the
// walk moves on; only an invalid root aborts the run.
package walker
