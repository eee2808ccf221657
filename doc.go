/*
Package gesture recognizes single finger touch gestures on a surface and
publishes them by name: touch, tap, doubletap, longtap, slide, move, swipe,
the four swipe directions, finish and end.

The package provides a command line interface which replays recorded touch
traces and writes the recognized gestures as YAML reports, or opens a
preview window classifying live pointer input. To check the supported
commands type:

	$ gesture --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"github.com/esimov/gesture"
	)

	func main() {
		area := gesture.NewTouchArea()
		g, err := gesture.New(area)
		if err != nil {
			fmt.Printf("Error binding the surface: %s", err.Error())
			return
		}
		defer g.Destroy()

		g.On(gesture.SwipeLeft, func() {
			fmt.Println("swiped left")
		})

		// Feed the raw touch events of the platform into the area.
		area.Dispatch(gesture.TouchEvent{Phase: gesture.PhaseStart, Touches: touches})
	}
*/
package gesture
