package security

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/wmnsk/milenage"
)

// Challenge holds everything produced for one 5G-AKA authentication
// attempt: the tokens sent to the UE plus the key material derived from
// the response, per original_source/5g-libs/security/src/keygen.rs.
type Challenge struct {
	RAND    [16]byte
	AUTN    [16]byte
	XRESStar []byte
	KSEAF   []byte
}

// GenerateChallenge runs Milenage f1/f2345 with a fresh random RAND and
// the fixed zero SQN (see DESIGN.md Open Question 1 — SQN resynchronisation
// is out of scope, so every attempt starts from SQN=0), then folds the
// result through the KDF ladder up to KSEAF and XRES*.
func GenerateChallenge(k, opc []byte, servingNetworkName string) (*Challenge, error) {
	var rnd [16]byte
	if _, err := rand.Read(rnd[:]); err != nil {
		return nil, fmt.Errorf("security: generating RAND: %w", err)
	}

	amf16 := binary.BigEndian.Uint16(AMF[:])
	m := milenage.NewWithOPc(k, opc, rnd[:], 0, amf16)

	mac, err := m.F1()
	if err != nil {
		return nil, fmt.Errorf("security: milenage f1: %w", err)
	}
	_, ck, ik, ak, err := m.F2345()
	if err != nil {
		return nil, fmt.Errorf("security: milenage f2345: %w", err)
	}

	var sqn [6]byte // always zero, see Open Question 1
	var sqnXorAK [6]byte
	for i := range sqn {
		sqnXorAK[i] = sqn[i] ^ ak[i]
	}

	var autn [16]byte
	copy(autn[0:6], sqnXorAK[:])
	copy(autn[6:8], AMF[:])
	copy(autn[8:16], mac)

	kausf := KAUSF(ck, ik, servingNetworkName, sqnXorAK)
	kseaf := KSEAF(kausf, servingNetworkName)
	xresStar := XRESStar(ck, ik, servingNetworkName, rnd[:], m.RES)

	return &Challenge{
		RAND:     rnd,
		AUTN:     autn,
		XRESStar: xresStar,
		KSEAF:    kseaf,
	}, nil
}

// ServingNetworkName builds the SNN string `5G:mnc<NNN>.mcc<NNN>...` used
// as a KDF input, per TS 23.003 28.1 and original_source/qcore/src/main.rs.
func ServingNetworkName(mcc, mnc string) string {
	if len(mnc) == 2 {
		mnc = "0" + mnc
	}
	return fmt.Sprintf("5G:mnc%s.mcc%s.3gppnetwork.org", mnc, mcc)
}
