// Package par2 wraps the par2 command-line tool (par2cmdline-turbo) used to
// create and verify the redundancy set that protects a sealed artifact.
package par2
