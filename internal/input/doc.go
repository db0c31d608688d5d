// Package input is the entry point of the keystroke pipeline.
//
// An Engine owns one Mapper per mode (see packages keymap and mode) and
// the pass-through boundary between the host and those Mappers. The host
// hands every raw event to HandleEvent, or already normalized tokens to
// Feed, and acts on the returned FeedResult:
//
//   - Consumed: suppress the platform's default handling. Pending is set
//     while a multi-key sequence or count prefix is still open.
//   - PassThrough: redispatch Events once, in order. They are marked
//     Replayed and bypass the engine if handed back.
//
// Events are buffered while their tokens are in flight, so a sequence
// that turns out not to match ("gx") is returned whole, companions
// (key down, key up) included.
//
// # Usage
//
//	cmds := input.NewCommands()
//	cmds.Register(input.CommandScrollDown, "Scroll down", page.ScrollDown)
//	...
//	engine, err := input.New(input.Options{Commands: cmds, Hints: session})
//
//	for ev := range events {
//	    res := engine.HandleEvent(ev)
//	    if res.Disposition == input.PassThrough {
//	        host.Replay(res.Events)
//	    }
//	}
//
// Engine is single-threaded. Actions run synchronously inside Feed.
package input
