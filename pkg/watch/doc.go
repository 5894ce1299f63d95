// Package watch keeps deployed files in step with the source tree while
// calvin runs in the foreground.
//
// A Source delivers raw filesystem notifications. The Loop coalesces them
// over a debounce window, refreshes the Cache for just the paths that
// changed and hands the full asset set to a sync pass. State only ever
// changes on the loop goroutine; the pass itself runs alongside so new
// notifications keep accumulating while it works.
package watch
