package main

import "github.com/CraigKelly/housegibbs/cmd"

func main() {
	cmd.Execute()
}
