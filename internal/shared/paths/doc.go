// Package paths provides standardized filesystem paths.
//
// # Directory Structure
//
//	<data home>/<app id>/
//	  └── documents/          (default document location)
//	<config home>/<app id>/
//	  └── document_path.txt   (configured document location, if any)
//
// The base directories come from github.com/adrg/xdg, so they follow the XDG
// specification on Linux and the platform conventions elsewhere.
//
// # Usage
//
//	layout, err := paths.Resolve("docshelf", "", "")
//	docs := layout.DefaultDocumentsDir()
//
//	if !paths.IsWithin(candidate, docs) {
//	    // reject
//	}
package paths
