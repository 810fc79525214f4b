package main

import "github.com/tanguofu/openclaw/cmd"

func main() {
	cmd.Execute()
}
