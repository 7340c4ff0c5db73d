package pdcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeSRB0NoIntegrity(t *testing.T) {
	tx := &Tx{SRBID: 0}
	payload := []byte("rrc setup")

	pdu, err := tx.Encode(payload)
	require.NoError(t, err)
	require.Equal(t, uint32(0), tx.TxNext, "SRB0 must not advance TX_NEXT")

	inner, err := ViewInner(pdu)
	require.NoError(t, err)
	require.Equal(t, payload, inner)

	mac := pdu[len(pdu)-4:]
	require.Equal(t, []byte{0, 0, 0, 0}, mac)
}

func TestEncodeSRB1RoundTripAndMonotonicSN(t *testing.T) {
	tx := &Tx{SRBID: 1, IntegrityKey: make([]byte, 16)}
	payload := []byte("security mode command")

	pdu1, err := tx.Encode(payload)
	require.NoError(t, err)
	require.Equal(t, uint32(1), tx.TxNext)

	inner1, err := ViewInner(pdu1)
	require.NoError(t, err)
	require.Equal(t, payload, inner1)

	pdu2, err := tx.Encode(payload)
	require.NoError(t, err)
	require.Equal(t, uint32(2), tx.TxNext)

	sn1 := uint16(pdu1[0]&0x0f)<<8 | uint16(pdu1[1])
	sn2 := uint16(pdu2[0]&0x0f)<<8 | uint16(pdu2[1])
	require.Greater(t, sn2, sn1)

	require.NotEqual(t, pdu1[len(pdu1)-4:], pdu2[len(pdu2)-4:], "MAC must change with TX_NEXT")
}

func TestEncodeSRB1WrapsSNAt12Bits(t *testing.T) {
	tx := &Tx{SRBID: 1, TxNext: 0x0fff, IntegrityKey: make([]byte, 16)}
	pdu, err := tx.Encode([]byte("x"))
	require.NoError(t, err)
	sn := uint16(pdu[0]&0x0f)<<8 | uint16(pdu[1])
	require.Equal(t, uint16(0x0fff), sn)
	require.Equal(t, uint32(0x1000), tx.TxNext)

	pdu, err = tx.Encode([]byte("x"))
	require.NoError(t, err)
	sn = uint16(pdu[0]&0x0f)<<8 | uint16(pdu[1])
	require.Equal(t, uint16(0), sn)
}

func TestEncodeSRB1BeforeSecurityActivationHasZeroMACButAdvancesSN(t *testing.T) {
	tx := &Tx{SRBID: 1}
	pdu, err := tx.Encode([]byte("authentication request"))
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, pdu[len(pdu)-4:])
	require.Equal(t, uint32(1), tx.TxNext, "TX_NEXT must advance even without integrity active")

	tx.EnableSecurity(make([]byte, 16))
	pdu2, err := tx.Encode([]byte("security mode command"))
	require.NoError(t, err)
	require.NotEqual(t, []byte{0, 0, 0, 0}, pdu2[len(pdu2)-4:])
}

func TestViewInnerRejectsTooShort(t *testing.T) {
	_, err := ViewInner([]byte{0, 0, 0, 0, 0})
	require.Error(t, err)
}

func TestEncodeRejectsUnsupportedSRB(t *testing.T) {
	tx := &Tx{SRBID: 2, IntegrityKey: make([]byte, 16)}
	_, err := tx.Encode([]byte("x"))
	require.Error(t, err)
}
