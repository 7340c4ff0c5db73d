package security

import "fmt"

// NIA2 computes the 128-NIA2 (AES-CMAC based) integrity MAC defined in
// TS 33.401 B.2.3. count is the 4-byte COUNT, bearer is a 5-bit bearer
// identity, downlink selects the 1-bit DIRECTION field (false = uplink),
// and message is the protected content. The returned MAC is the first
// 4 bytes of AES-CMAC(ik, input).
func NIA2(ik []byte, count [4]byte, bearer uint8, downlink bool, message []byte) ([4]byte, error) {
	var mac [4]byte
	if len(ik) != 16 {
		return mac, fmt.Errorf("security: NIA2 key must be 16 bytes, got %d", len(ik))
	}
	if bearer > 0x1f {
		return mac, fmt.Errorf("security: NIA2 bearer out of range: %d", bearer)
	}

	dir := byte(0)
	if downlink {
		dir = 1
	}

	input := make([]byte, 8+len(message))
	copy(input[0:4], count[:])
	input[4] = (bearer << 3) | (dir << 2)
	// input[5:8] left zero.
	copy(input[8:], message)

	full, err := aesCMAC(ik, input)
	if err != nil {
		return mac, fmt.Errorf("security: NIA2: %w", err)
	}
	copy(mac[:], full[:4])
	return mac, nil
}
