// Package rotating provides a fixed-capacity history window.
//
// A Buffer keeps the most recent N values pushed into it. Once full, every
// Push overwrites the oldest resident value. Values can only be appended;
// removal from the front or middle is not supported and Pop, Shift and
// Unshift always return ErrInvalidOperation.
//
// # Usage
//
//	restarts := rotating.New[time.Time](5)
//	restarts.Push(time.Now())
//
//	if restarts.Full() {
//	    first, _ := restarts.First()
//	    last, _ := restarts.Last()
//	    if last.Sub(first) < time.Minute {
//	        // five restarts within a minute
//	    }
//	}
package rotating
