package f1ap

import "go.uber.org/zap"

// TeardownFunc tears down every live UE context on an association, used by
// F1 Removal (spec.md §7, "F1 Removal Request: all UE tasks are directed to
// exit").
type TeardownFunc func(assocID string)

// CUName is advertised in F1 Setup Response.
type CUName string

// Handler is the concrete GlobalHandler used by cmd/qcore: it answers the
// three stateless F1AP procedures, grounded on
// original_source/qcore/src/procedures/{f1_setup,f1_removal,gnb_du_configuration_update}.rs.
type Handler struct {
	Log      *zap.Logger
	CUName   CUName
	Teardown TeardownFunc
}

// F1Setup builds an F1 Setup Response advertising the CU name and echoing
// every DU-served cell back with a generated SIB2, per spec.md §4.7.
func (h *Handler) F1Setup(assocID string, req F1SetupRequest) F1SetupResponse {
	h.Log.Info("f1 setup", zap.String("du_name", req.GNBDUName), zap.Uint64("du_id", req.GNBDUID))
	sib2 := BuildSIB2()
	cells := make([]CellToActivate, 0, len(req.ServedCells))
	for _, c := range req.ServedCells {
		cells = append(cells, CellToActivate{NRCGI: c.NRCGI, SIB2: sib2})
	}
	return F1SetupResponse{
		TransactionID:   transactionIDOrFallback(req.TransactionID),
		GNBCUName:       string(h.CUName),
		CellsToActivate: cells,
	}
}

// transactionIDOrFallback echoes id unless the decoded request carried no
// transaction id at all (the zero value), in which case it mints a
// best-effort one so the response's id is never indistinguishable from
// "unset" (DOMAIN STACK's uuid fallback).
func transactionIDOrFallback(id TransactionID) TransactionID {
	if id != 0 {
		return id
	}
	return FallbackTransactionID()
}

// F1Removal tears down every UE context on the association (TS 38.473
// §8.2.8: once the response is sent the DU may remove the TNL association),
// then acknowledges.
func (h *Handler) F1Removal(assocID string, req F1RemovalRequest) F1RemovalResponse {
	h.Log.Info("f1 removal", zap.String("assoc", assocID))
	h.Teardown(assocID)
	return F1RemovalResponse{TransactionID: transactionIDOrFallback(req.TransactionID)}
}

// GNBDUConfigurationUpdate acknowledges unconditionally; served-cell
// add/modify/delete lists are not implemented in this revision.
func (h *Handler) GNBDUConfigurationUpdate(req GNBDUConfigurationUpdate) GNBDUConfigurationUpdateAcknowledge {
	h.Log.Debug("gnb-du configuration update received, served-cell changes ignored")
	return GNBDUConfigurationUpdateAcknowledge{TransactionID: transactionIDOrFallback(req.TransactionID)}
}
