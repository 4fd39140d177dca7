package buildinfo

import (
	"os"
)

// DebugEnabled controls whether or not verbose debug logging is enabled. It
// is set automatically based on the GOFILEBACKEND_DEBUG environment variable.
var DebugEnabled bool

func init() {
	// Check whether or not debugging should be enabled.
	DebugEnabled = os.Getenv("GOFILEBACKEND_DEBUG") == "1"
}
