package main

import "github.com/Mohsinsiddi/w3stark/cmd"

func main() {
	cmd.Execute()
}
