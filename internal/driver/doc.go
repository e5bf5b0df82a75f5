// Package driver runs unicecream over files on disk.
//
// Files are processed one at a time in sorted order. Each file is read,
// parsed and either checked or rewritten before the next one is touched;
// nothing but the aggregate Result crosses file boundaries. Per-file
// failures are recorded on the FileResult and never stop the run.
package driver
