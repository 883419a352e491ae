// Command wmbuspipe runs rtl_sdr | rtl_wmbus and prints the telegram lines.
package main

import (
	"os"
)

func main() {
	os.Exit(Execute())
}
