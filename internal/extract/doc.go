// Package extract unpacks a source archive into the run's working
// directory, normalizing both archive topologies to a single working tree
// named after the archive.
package extract
