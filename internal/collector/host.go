package collector

import (
	"os"
	"runtime"

	"github.com/digggggmori-pixel/elog/pkg/types"
)

// GetHostInfo returns basic information about the local host
func GetHostInfo() types.HostInfo {
	hostname, _ := os.Hostname()
	return types.HostInfo{
		Hostname: hostname,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}
