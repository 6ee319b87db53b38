// Command docctl talks to a running docshelf server.
//
//	docctl get
//	docctl set /home/me/Documents/docshelf
//	echo hello | docctl save notes.txt
//	docctl -format json diagnose notes.txt
//
// The server address comes from -server or DOCSHELF_URL. Failures print the
// server's error kind and message and exit with status 1; usage errors exit
// with status 2.
package main
