package main

import "github.com/vibast-solutions/ms-go-sleep/cmd"

func main() {
	cmd.Execute()
}
