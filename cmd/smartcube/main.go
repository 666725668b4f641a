// smartcube is a trainer for QiYi smart cubes.
package main

import (
	"github.com/SeamusWaldron/smartcube/internal/cli"
)

func main() {
	cli.Execute()
}
