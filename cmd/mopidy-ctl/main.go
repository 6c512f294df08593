// ABOUTME: Entry point for the mopidy-ctl command line tool
// ABOUTME: Runs the cobra command tree against a Mopidy server
package main

func main() {
	Execute()
}
