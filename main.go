package main

import "github.com/staysight/staysight/cmd"

func main() {
	cmd.Execute()
}
