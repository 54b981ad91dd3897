// Package instance lets a second stormwin invocation hand its request to
// the instance already running.
//
// The running instance serves a WebSocket endpoint on a unix socket. Each
// text message is one request:
//
//	{"id":1,"method":"open","params":{"mode":"tab","paths":["/a.txt"]}}
//
// and is answered by one response carrying the same id and either a
// result or an error:
//
//	{"id":1,"result":{"status":"ok"}}
//	{"id":1,"error":{"code":-32601,"message":"unknown method: close"}}
//
// Methods are open (mode, paths), theme (name), windows and ping.
package instance
