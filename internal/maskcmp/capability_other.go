//go:build !amd64 && !arm64

package maskcmp

func init() {
	selectKind()
}
