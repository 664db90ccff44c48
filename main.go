/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package main

import (
	_ "time/tzdata"

	"github.com/mattismoel/stineplan/cmd"
)

func main() {
	cmd.Execute()
}
