package main

import "sheetlog/cmd"

func main() {
	cmd.Execute()
}
