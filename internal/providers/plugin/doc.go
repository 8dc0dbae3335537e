/*
Package plugin launches renderer processes and speaks their wire protocol.

Every renderer is started through a launcher executable that receives the
backend binary as its last argument. Host and renderer then exchange
newline-delimited JSON over the renderer's stdin and stdout.

Host to renderer, one command per line:

	{"op":"init","backend":"media_plugin_cef","width":1024,"height":768}
	{"op":"load_uri","url":"https://example.com/"}
	{"op":"mouse_event","kind":"down","button":0,"x":10,"y":20}
	{"op":"shutdown"}

Renderer to host, one message per line:

	{"event":"ready"}
	{"event":"size_changed","width":1000,"height":700,"bits_width":1024,"bits_height":768,"depth":4}
	{"event":"frame","x":0,"y":0,"width":16,"height":16,"pixels":"<base64>"}
	{"event":"navigate_begin","url":"https://example.com/"}

Frame pixels are tightly packed rows of width*depth bytes. A renderer that
exits before sending "ready" is reported as a failed launch; any other exit
that the host did not ask for is reported as a crash.
*/
package plugin
