//go:build windows

package collector

import (
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procMultiByteToWideChar = modkernel32.NewProc("MultiByteToWideChar")
	procGetOEMCP            = modkernel32.NewProc("GetOEMCP")
)

// decodeOEMOutput converts console output from the system's OEM code page
// (e.g. CP866 on Russian or CP437 on US English Windows) to UTF-8. PowerShell
// error records written to stderr keep the console code page even after
// OutputEncoding is switched.
func decodeOEMOutput(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	cp, _, _ := procGetOEMCP.Call()
	if cp == 65001 { // already UTF-8
		return string(data)
	}

	n, _, _ := procMultiByteToWideChar.Call(
		cp, 0,
		uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)),
		0, 0,
	)
	if n == 0 {
		return string(data)
	}

	buf := make([]uint16, n)
	procMultiByteToWideChar.Call(
		cp, 0,
		uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)),
		uintptr(unsafe.Pointer(&buf[0])), n,
	)

	return string(utf16.Decode(buf))
}
