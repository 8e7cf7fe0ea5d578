// Package timelapse replays a list of years at a fixed cadence.
//
// A [Sequencer] owns a cursor into a sorted year list and a redraw callback.
// [Sequencer.Start] launches a single ticker goroutine and returns at once;
// each tick redraws the year under the cursor and advances it. In [Loop]
// mode the cursor wraps to the first year. In [OneShot] mode the sequencer
// halts after drawing the last year.
//
// [Sequencer.Stop] cancels the ticker and waits for the goroutine to exit,
// so once it returns no further redraw happens. Redraws never overlap: ticks
// and manual overrides are serialized.
//
//	seq := timelapse.New(years, timelapse.OneShot, time.Second, func(year string) {
//	    render(year)
//	})
//	seq.Start(ctx)
//	defer seq.Stop()
package timelapse
