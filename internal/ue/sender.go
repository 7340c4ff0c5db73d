package ue

import (
	"fmt"

	"github.com/qcore-go/qcore/internal/f1ap"
)

// Sender is the narrow interface a Task uses to write an F1AP PDU out to
// the DU; implemented by F1APSender against a real association, and
// stubbed in tests.
type Sender interface {
	Send(pdu f1ap.PDU) error
}

// F1APSender adapts an *f1ap.Association plus its Codec into a Sender,
// so Task never holds a direct dependency on the wire encoding.
type F1APSender struct {
	Assoc *f1ap.Association
	Codec f1ap.Codec
}

func (s *F1APSender) Send(pdu f1ap.PDU) error {
	encoded, err := s.Codec.Encode(pdu)
	if err != nil {
		return fmt.Errorf("ue: encode f1ap pdu: %w", err)
	}
	return s.Assoc.Send(encoded)
}
