//go:build arm64

package maskcmp

import "golang.org/x/sys/cpu"

func init() {
	hasWord2x = cpu.ARM64.HasASIMD
	selectKind()
}
