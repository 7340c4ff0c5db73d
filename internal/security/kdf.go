package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
)

// FC codes for the TS 33.220 Annex B.2.0 KDF ladder used in 5G-AKA.
const (
	fcKAUSF    = 0x6A
	fcKSEAF    = 0x6C
	fcXRESStar = 0x6B
	fcKAMF     = 0x6D
	fcKgNB     = 0x6E
	fcAlgKey   = 0x69
)

// AMF is the fixed authentication management field used for every
// challenge this core generates: 0x80 0x00.
var AMF = [2]byte{0x80, 0x00}

// kdf implements KDF(K, S) = HMAC-SHA-256(K, S) where S is the
// concatenation of the FC byte and each (parameter, length) pair, with
// lengths encoded as big-endian uint16, per TS 33.220 B.2.0.
func kdf(key []byte, fc byte, params ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte{fc})
	for _, p := range params {
		mac.Write(p)
		var l [2]byte
		binary.BigEndian.PutUint16(l[:], uint16(len(p)))
		mac.Write(l[:])
	}
	return mac.Sum(nil)
}

// KAUSF derives KAUSF from CK||IK, the serving network name, and
// SQN XOR AK.
func KAUSF(ck, ik []byte, snn string, sqnXorAK [6]byte) []byte {
	key := append(append([]byte{}, ck...), ik...)
	return kdf(key, fcKAUSF, []byte(snn), sqnXorAK[:])
}

// KSEAF derives KSEAF from KAUSF and the serving network name.
func KSEAF(kausf []byte, snn string) []byte {
	return kdf(kausf, fcKSEAF, []byte(snn))
}

// XRESStar derives XRES* (the last 16 bytes of the KDF output) from
// CK||IK, the serving network name, RAND and XRES.
func XRESStar(ck, ik []byte, snn string, rand, xres []byte) []byte {
	key := append(append([]byte{}, ck...), ik...)
	out := kdf(key, fcXRESStar, []byte(snn), rand, xres)
	return out[len(out)-16:]
}

// KAMF derives KAMF from KSEAF, the 15-digit IMSI and the fixed
// ABBA value 0x0000.
func KAMF(kseaf []byte, imsi string) []byte {
	abba := []byte{0x00, 0x00}
	return kdf(kseaf, fcKAMF, []byte(imsi), abba)
}

// KgNB derives KgNB from KAMF and the uplink NAS COUNT at the time
// AS security is activated.
func KgNB(kamf []byte, ulNASCount uint32) []byte {
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], ulNASCount)
	one := []byte{0x01}
	return kdf(kamf, fcKgNB, count[:], one)
}

// Algorithm type distinguishers for derive-algorithm-key (TS 33.401 A.7/A.8).
const (
	AlgTypeNASEnc  = 0x01
	AlgTypeNASInt  = 0x02
	AlgTypeRRCEnc  = 0x03
	AlgTypeRRCInt  = 0x04
	AlgTypeUPEnc   = 0x05
	AlgTypeUPInt   = 0x06
	AlgIDNIA2NEA2 = 0x02
)

// deriveAlgorithmKey returns the last 16 bytes of
// KDF(inputKey, 0x69, algType, 0x0001, algID, 0x0001).
func deriveAlgorithmKey(inputKey []byte, algType, algID byte) []byte {
	out := kdf(inputKey, fcAlgKey, []byte{algType}, []byte{algID})
	return out[len(out)-16:]
}

// KNASint derives the NAS integrity key from KAMF.
func KNASint(kamf []byte) []byte {
	return deriveAlgorithmKey(kamf, AlgTypeNASInt, AlgIDNIA2NEA2)
}

// KRRCint derives the RRC integrity key from KgNB.
func KRRCint(kgnb []byte) []byte {
	return deriveAlgorithmKey(kgnb, AlgTypeRRCInt, AlgIDNIA2NEA2)
}
