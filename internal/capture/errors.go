package capture

import "errors"

// ErrInvalidURL is returned when the requested URL is not a well-formed
// absolute http(s) URL. No network activity happens in this case.
var ErrInvalidURL = errors.New("capture: invalid url")

// ErrNavigationTimeout is returned when the page did not settle within
// the navigation bound.
var ErrNavigationTimeout = errors.New("capture: navigation timed out")

// ErrNavigation is returned for DNS, connection and certificate failures.
var ErrNavigation = errors.New("capture: navigation failed")

// ErrRender is returned when the browser produced no usable content or
// the screenshot could not be taken.
var ErrRender = errors.New("capture: render failed")
