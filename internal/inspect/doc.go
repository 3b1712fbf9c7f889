// Package inspect classifies a source archive's internal layout before
// extraction. An archive whose members all live under a single top-level
// directory named after the archive keeps that directory as the working
// tree; anything else is scattered and gets a synthetic root during
// extraction.
package inspect
