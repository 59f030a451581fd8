package main

import "github.com/KaramelBytes/worksetmap/cmd"

func main() {
	cmd.Execute()
}
