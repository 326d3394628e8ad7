package main

import "github.com/quorahq/accountserver/cmd"

func main() {
	cmd.Execute()
}
