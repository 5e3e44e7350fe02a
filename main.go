package main

import "github.com/akraiem/attendance-tracker/cmd"

func main() {
	cmd.Execute()
}
