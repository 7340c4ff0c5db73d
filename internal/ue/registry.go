package ue

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/qcore-go/qcore/internal/f1ap"
)

// SpawnFunc launches a new UE task owning id's mailbox, grounded on
// qcore.rs's spawn_ue_message_handler: allocation and task spawn happen
// atomically with respect to the router, but the task itself runs in its
// own goroutine and only reads its first PDU (the InitialULRRCMessageTransfer
// the router just enqueued) once scheduled.
type SpawnFunc func(id uint32, assocID string, mailbox f1ap.Mailbox)

// Registry implements f1ap.Registry: a concurrent CU-F1AP-id -> mailbox
// map with random-id-with-retry allocation, mirroring qcore.rs's
// ue_channels map plus spawn_ue_message_handler/dispatch_ue_message/
// delete_ue_channel.
type Registry struct {
	mu        sync.Mutex
	mailboxes map[uint32]f1ap.Mailbox
	assocOf   map[uint32]string
	spawn     SpawnFunc
	log       *zap.Logger
}

func NewRegistry(spawn SpawnFunc, log *zap.Logger) *Registry {
	return &Registry{
		mailboxes: make(map[uint32]f1ap.Mailbox),
		assocOf:   make(map[uint32]string),
		spawn:     spawn,
		log:       log,
	}
}

// SetSpawn wires the function Allocate calls once it is known, breaking the
// construction cycle between a Registry (needed by Deps) and the Spawn
// closure (needed to build a Registry's spawn field, since it closes over
// Deps).
func (r *Registry) SetSpawn(spawn SpawnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spawn = spawn
}

// Lookup implements f1ap.Registry.
func (r *Registry) Lookup(cuF1APID uint32) (f1ap.Mailbox, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.mailboxes[cuF1APID]
	return mb, ok
}

// Allocate implements f1ap.Registry: it picks a fresh, non-zero, currently
// unused id, installs the mailbox, and spawns the owning task, all under
// the registry lock so a concurrent Lookup for the same id either sees
// nothing or sees a task already running.
func (r *Registry) Allocate(initial f1ap.InitialULRRCMessageTransfer, assocID string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id uint32
	for {
		id = rand.Uint32()
		if id == 0 {
			continue
		}
		if _, exists := r.mailboxes[id]; !exists {
			break
		}
	}

	mb := make(f1ap.Mailbox, 64)
	r.mailboxes[id] = mb
	r.assocOf[id] = assocID
	r.log.Info("allocated ue context", zap.Uint32("cu_ue_f1ap_id", id), zap.String("assoc", assocID))
	r.spawn(id, assocID, mb)
	return id
}

// Remove deletes id's mailbox, per qcore.rs's delete_ue_channel, called by
// a task as it exits.
func (r *Registry) Remove(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mailboxes, id)
	delete(r.assocOf, id)
}

// CloseAssociation tears down every UE task spawned from assocID, by
// closing its mailbox: the task's next receive returns the zero PDU, which
// the steady-state loop's default case turns into an exit plus teardown.
// Used by F1 Removal (spec.md §7) and when an association drops.
func (r *Registry) CloseAssociation(assocID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.assocOf {
		if a != assocID {
			continue
		}
		close(r.mailboxes[id])
		delete(r.mailboxes, id)
		delete(r.assocOf, id)
	}
}

// Count reports the number of live UE contexts, for the active-UE gauge.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mailboxes)
}
