package main

import "github.com/HarshitBilagi/LeetCode-Revision-Agent/cmd"

func main() {
	cmd.Execute()
}
