package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Resolve   bool
	Normalize bool
	Classes   bool
	Query     bool
}

var d *debug

func init() {
	d = &debug{}
	d.Resolve = boolEnv("KA_DEBUG_RESOLVE")
	d.Normalize = boolEnv("KA_DEBUG_NORMALIZE")
	d.Classes = boolEnv("KA_DEBUG_CLASSES")
	d.Query = boolEnv("KA_DEBUG_QUERY")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Resolve() bool {
	return d.Resolve
}
func Normalize() bool {
	return d.Normalize
}
func Classes() bool {
	return d.Classes
}
func Query() bool {
	return d.Query
}
