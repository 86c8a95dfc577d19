package cmd

import (
	"fmt"
)

// Version is overridden at build time.
var Version = "dev"

const banner = `
 __      ___       _
 \ \    / (_)     (_)
  \ \  / / _  __ _ _  __ _
   \ \/ / | |/ _` + "`" + ` | |/ _` + "`" + ` |
    \  /  | | (_| | | (_| |
     \/   |_|\__, |_|\__,_|
              __/ |
             |___/
`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Neighborhood Panic Button Agent - Version %s\x1b[0m\n\n", Version)
}
