// Package encoder shells out to ffmpeg to turn per-view image sequences into
// H.264 videos.
package encoder
