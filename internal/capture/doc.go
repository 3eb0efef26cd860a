// Package capture connects to the chat feed over WebSocket and turns chat
// messages into address records.
//
// The feed owns one connection at a time. The initial dial and room
// subscribe happen inside Start and a failure there is fatal; once running,
// connection loss triggers reconnection with exponential backoff. While an
// execution is in flight the feed is paused: frames are still read off the
// wire so the connection stays healthy, but their contents are discarded.
package capture
