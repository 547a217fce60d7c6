// Package main is the entry point of the alarm-console binary.
package main

import "github.com/oshokin/alarm-console/cmd/alarm-console/cmd"

func main() {
	cmd.Execute()
}
