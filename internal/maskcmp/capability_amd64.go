//go:build amd64

package maskcmp

import "golang.org/x/sys/cpu"

func init() {
	hasWord4x = cpu.X86.HasAVX2
	hasWord2x = cpu.X86.HasSSE2
	selectKind()
}
