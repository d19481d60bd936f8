// Package enforce holds hard startup assertions. ENFORCE is for conditions
// that make continuing meaningless (wrong platform, impossible config); it
// logs and panics rather than returning an error.
package enforce

import (
	"math"

	"github.com/alexchartier/digital-rf/logger"
)

func init() {
	CheckCompiler()
}

func ENFORCE(query interface{}, args ...interface{}) {
	switch t := query.(type) {
	case bool:
		if !t {
			logger.Printf("enforce", "ENFORCE: %v", args)
			panic(0)
		}
	case error:
		if t != nil {
			logger.Printf("enforce", "ENFORCE: %v", args)
			panic(t)
		}
	}
}

// CheckCompiler verifies int is 64 bits wide; the sample-index arithmetic
// assumes it.
func CheckCompiler() {
	myint := int(math.MaxInt64)
	ENFORCE(uint64(myint) == uint64(int64(math.MaxInt64)), "Must be on 64 bit system.")
}
