// Package sevenzip wraps the 7z command-line tool, providing archive member
// listing and extraction for the pipeline's container codec boundary.
package sevenzip
