// Package terminal is a tcell host for the modal input engine.
//
// It shows a scrollable page of text and links with a status line and an
// input line. tcell key and mouse events are converted to raw key events
// and handed to the engine one at a time; events the engine passes back
// get the terminal's default behavior:
//
//   - in insert mode, characters are typed into the input line
//   - a left click on a link follows it
//   - anything else only updates the status line
//
// Config reloads arrive on the watcher goroutine and are posted to the
// event loop as tcell interrupt events, so the engine only ever runs on
// the loop goroutine.
package terminal
