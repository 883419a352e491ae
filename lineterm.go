//go:build !windows

package wmbuspipe

// LineTerminator ends every line written to the output sink
const LineTerminator = "\n"
