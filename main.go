package main

import "github.com/huanfeng/apkinspect/cmd"

func main() {
	cmd.Execute()
}
