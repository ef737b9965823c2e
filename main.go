package main

import "github.com/frahmantamala/hr-administration/cmd"

func main() {
	cmd.Execute()
}
