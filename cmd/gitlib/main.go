// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/gitlib/cmd/gitlib/cmd"
)

func main() {
	cmd.Execute()
}
