// Package config defines the runtime settings of the alarm console and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the request queue capacity, the display scheduler
// tick, the console prompt, and the log level. A missing settings file is
// not an error: the console runs on defaults.
package config
