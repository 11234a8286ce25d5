package main

import "github.com/skillaudit/scanner/cmd/skillauditctl"

func main() {
	cmd.Execute()
}
