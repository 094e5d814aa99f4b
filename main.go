package main

import "github.com/jsphweid/pianogram/cmd"

func main() {
	cmd.Execute()
}
