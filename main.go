package main

import "github.com/frahmantamala/goal-tracker/cmd"

func main() {
	cmd.Execute()
}
