package bits

import "hash/crc64"

var crc64Table = crc64.MakeTable(crc64.ISO)

// CRC64 checksums data using the CRC-64/ISO polynomial. No third-party
// CRC-64 implementation turned up anywhere in the dependency set this
// package otherwise draws on, so this one function stays on the standard
// library.
func CRC64(data []byte) uint64 {
	return crc64.Checksum(data, crc64Table)
}
