package main

import "github.com/thomhuang/australia-postcode/cmd"

var Version = "development"

func main() {
	cmd.Execute(Version)
}
