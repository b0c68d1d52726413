// Package format names the output formats for decoded archives.
package format
