package main

import "github.com/ademuri/streaming-history/cmd"

func main() {
	cmd.Execute()
}
