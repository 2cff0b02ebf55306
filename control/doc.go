// Copyright 2022 Mendel Greenberg <mendel@chabad360.me>

//Package control maps incoming OSC messages onto host actions: moving a
//timeline to a named section, or toggling enable/disable argument sets on a
//target.
//
//Wire decoding is handled by github.com/chabad360/go-osc; this package picks
//up where the decoder leaves off. Messages arrive on the network goroutine,
//get queued by address, and are applied later from a single main-loop
//goroutine, the way a frame-driven host (editor, show controller) expects.
//
//The pieces:
//
//Registry maps exact address strings to handlers. Unlike the osc package's
//dispatcher there is no pattern matching here; these handlers answer to fixed,
//generated addresses like "/timeline/Intro" or "/fx/Enable".
//
//Dispatcher is the concurrency boundary. Dispatch runs on the receive
//goroutine and only ever enqueues; Drain runs on the main loop and applies
//everything queued since the last frame.
//
//Scheduler delays an action by a number of seconds on the main loop's clock.
//A handler has one scheduling channel: a newer request replaces the pending
//one, so the latest message always wins.
//
//Usage:
//  d := control.NewDispatcher(nil)
//  h := control.NewSectionHandler(d, timeline, "/timeline", 0)
//  h.Activate()
//  h.Init()
//
//  go osc.ListenAndServe("127.0.0.1:8765", d.Dispatch)
//
//  for now := range time.Tick(16 * time.Millisecond) {
//      d.Drain()
//      h.Tick(now)
//  }
package control
