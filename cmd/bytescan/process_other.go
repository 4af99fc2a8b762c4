//go:build !windows

package main

import (
	"context"
	"errors"

	"github.com/zhuweiyou/bytescan"
)

var errProcessUnsupported = errors.New("process scanning is only supported on windows")

func scanProcesses(context.Context, config, []string, []bytescan.Option) ([]fileReport, error) {
	return nil, errProcessUnsupported
}
