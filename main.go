package main

import "github.com/frahmantamala/hrms/cmd"

func main() {
	cmd.Execute()
}
