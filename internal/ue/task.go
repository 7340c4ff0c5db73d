package ue

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/qcore-go/qcore/internal/config"
	"github.com/qcore-go/qcore/internal/f1ap"
	"github.com/qcore-go/qcore/internal/metrics"
	"github.com/qcore-go/qcore/internal/nas"
	"github.com/qcore-go/qcore/internal/rrc"
	"github.com/qcore-go/qcore/internal/simtable"
	"github.com/qcore-go/qcore/internal/userplane"
)

// SIMLookup resolves an IMSI to its long-term credentials.
type SIMLookup interface {
	Lookup(imsi string) (simtable.Creds, bool)
}

// tableLookup adapts a plain simtable.Table to SIMLookup.
type tableLookup struct{ table simtable.Table }

func (t tableLookup) Lookup(imsi string) (simtable.Creds, bool) {
	c, ok := t.table[imsi]
	return c, ok
}

// NewSIMLookup adapts a loaded simtable.Table for use in Deps.
func NewSIMLookup(table simtable.Table) SIMLookup { return tableLookup{table: table} }

// Deps bundles everything a Task needs beyond its own mailbox and sender,
// shared read-only across every UE task on the core.
type Deps struct {
	Config   *config.Config
	SIMs     SIMLookup
	Engine   *userplane.Engine
	RRCCodec rrc.Codec
	NASCodec nas.Codec
	Registry *Registry
	Log      *zap.Logger
}

// Task is one UE's attach-ladder-then-steady-state state machine, running
// in its own goroutine, grounded on
// original_source/qcore/src/procedures/ue_procedures/ue_message_handler.rs's
// UeMessageHandler.
type Task struct {
	deps    Deps
	sender  Sender
	mailbox f1ap.Mailbox
	assocID string
	log     *zap.Logger
	tracer  trace.Tracer

	ctx *Context
}

// Spawn launches a Task as SpawnFunc, the shape Registry.Allocate calls.
func Spawn(deps Deps, sender Sender) SpawnFunc {
	return func(id uint32, assocID string, mailbox f1ap.Mailbox) {
		t := &Task{
			deps:    deps,
			sender:  sender,
			mailbox: mailbox,
			assocID: assocID,
			log:     deps.Log.With(zap.Uint32("cu_ue_f1ap_id", id)),
			tracer:  otel.Tracer("qcore-ue"),
		}
		go t.run(id)
	}
}

func (t *Task) run(id uint32) {
	defer t.teardown(id)
	if err := t.runInner(id); err != nil {
		t.log.Info("ue task exiting", zap.Error(err))
	}
}

func (t *Task) teardown(id uint32) {
	if t.ctx != nil {
		for _, s := range t.ctx.PDUSessions {
			t.deps.Engine.DeleteSession(userplane.Session{Slot: s.Slot})
		}
	}
	t.deps.Registry.Remove(id)
}

func (t *Task) runInner(id uint32) error {
	spanCtx, span := t.tracer.Start(context.Background(), "Task.runInner")
	defer span.End()

	pdu := <-t.mailbox
	initial, ok := pdu.(f1ap.InitialULRRCMessageTransfer)
	if !ok {
		return fmt.Errorf("ue: expected InitialULRRCMessageTransfer as first pdu, got %T", pdu)
	}

	ctx, err := NewContext(id, initial.GNBDUUEF1APID, initial.NRCGI)
	if err != nil {
		return err
	}
	t.ctx = ctx

	if err := t.initialAccess(spanCtx, initial); err != nil {
		metrics.AttachAbortTotal.Inc()
		return fmt.Errorf("ue: initial access: %w", err)
	}
	metrics.AttachSuccessTotal.Inc()

	for {
		pdu := <-t.mailbox
		switch p := pdu.(type) {
		case f1ap.ULRRCMessageTransfer:
			decoded, err := t.extractULDCCH(p.RRCContainer)
			if err != nil {
				return fmt.Errorf("ue: extract ul dcch: %w", err)
			}
			if err := t.handleULDCCH(spanCtx, decoded); err != nil {
				return err
			}
		case f1ap.UEContextReleaseRequest:
			t.log.Info("du-initiated context release", zap.String("cause", p.Cause.RadioNetwork))
			if err := t.releaseContext(spanCtx, p.Cause); err != nil {
				return fmt.Errorf("ue: du-initiated release: %w", err)
			}
			return fmt.Errorf("du-initiated context release")
		default:
			return fmt.Errorf("ue: unsupported steady-state pdu %T", pdu)
		}
	}
}
