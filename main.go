package main

import "github.com/example/studybot/cmd"

func main() {
	cmd.Execute()
}
