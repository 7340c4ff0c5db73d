package f1ap

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Mailbox is the write end of a UE task's FIFO PDU queue. It is a buffered
// channel (ue.Registry allocates 64 slots), so a send blocks while the
// queue is full.
type Mailbox chan PDU

// Registry is the concurrent CU-F1AP-id -> mailbox map the router dispatches
// UE-associated messages through. Implemented by internal/ue.Registry;
// defined here to keep the router free of a dependency on internal/ue.
type Registry interface {
	Lookup(cuF1APID uint32) (Mailbox, bool)
	// Allocate reserves a fresh id and mailbox for a new UE, driven by that
	// UE's InitialULRRCMessageTransfer.
	Allocate(initial InitialULRRCMessageTransfer, assocID string) uint32
}

// GlobalHandler answers the class-1 procedures that are stateless on the CU
// side: F1 Setup, F1 Removal, GNB-DU Configuration Update.
type GlobalHandler interface {
	F1Setup(assocID string, req F1SetupRequest) F1SetupResponse
	F1Removal(assocID string, req F1RemovalRequest) F1RemovalResponse
	GNBDUConfigurationUpdate(req GNBDUConfigurationUpdate) GNBDUConfigurationUpdateAcknowledge
}

// Router dispatches decoded F1AP PDUs received on an association to either a
// global handler or a UE mailbox, per spec.md §4.4. It never blocks beyond
// enqueueing onto a mailbox or association.
type Router struct {
	Log      *zap.Logger
	Global   GlobalHandler
	Registry Registry
	Tracer   trace.Tracer
}

// tracer returns r.Tracer, falling back to the global otel tracer (a no-op
// until a provider is configured) so a Router built as a bare struct literal
// in tests never calls through a nil interface.
func (r *Router) tracer() trace.Tracer {
	if r.Tracer != nil {
		return r.Tracer
	}
	return otel.Tracer("qcore-f1ap")
}

// Dispatch classifies one inbound PDU and routes it. assoc.Send is used to
// return class-1 responses synchronously; UE-associated PDUs are only
// enqueued, never answered directly. Opens one span per dispatch, mirroring
// cu.go's tracer.Start(ctx, "CentralUnit.HandleX") per-handler spans.
func (r *Router) Dispatch(assoc *Association, codec Codec, pdu PDU) error {
	_, span := r.tracer().Start(context.Background(), "Router.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("f1ap.pdu_type", fmt.Sprintf("%T", pdu)),
		attribute.String("f1ap.assoc", assoc.ID),
	)

	switch p := pdu.(type) {
	case F1SetupRequest:
		return r.respond(assoc, codec, r.Global.F1Setup(assoc.ID, p))
	case F1RemovalRequest:
		return r.respond(assoc, codec, r.Global.F1Removal(assoc.ID, p))
	case GNBDUConfigurationUpdate:
		return r.respond(assoc, codec, r.Global.GNBDUConfigurationUpdate(p))

	case InitialULRRCMessageTransfer:
		id := r.Registry.Allocate(p, assoc.ID)
		if mb, ok := r.Registry.Lookup(id); ok {
			mb <- p
		}
		return nil

	case ULRRCMessageTransfer:
		r.deliver(p.GNBCUUEF1APID, p)
		return nil
	case UEContextReleaseRequest:
		r.deliver(p.GNBCUUEF1APID, p)
		return nil

	case UEContextSetupResponse:
		r.deliver(p.GNBCUUEF1APID, p)
		return nil
	case UEContextReleaseComplete:
		r.deliver(p.GNBCUUEF1APID, p)
		return nil

	default:
		return fmt.Errorf("f1ap: router: unhandled PDU type %T", pdu)
	}
}

func (r *Router) deliver(cuF1APID uint32, pdu PDU) {
	mb, ok := r.Registry.Lookup(cuF1APID)
	if !ok {
		r.Log.Warn("f1ap: dropping PDU for unknown UE", zap.Uint32("cu_f1ap_id", cuF1APID), zap.String("type", fmt.Sprintf("%T", pdu)))
		return
	}
	mb <- pdu
}

func (r *Router) respond(assoc *Association, codec Codec, resp PDU) error {
	encoded, err := codec.Encode(resp)
	if err != nil {
		return fmt.Errorf("f1ap: encode response: %w", err)
	}
	return assoc.Send(encoded)
}
