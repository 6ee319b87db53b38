// Package http implements the REST handlers of the backend.
//
// Document commands are served at POST /commands/:command, where command is
// a documents tool name such as save_file. The JSON body carries the tool
// parameters and the response is the service result:
//
//	{"success":true,"data":{"value":"/home/me/.local/share/docshelf/documents/notes.txt"}}
//	{"success":false,"error":"...","kind":"not_found"}
//
// Failure kinds map to status codes via StatusFor.
package http
