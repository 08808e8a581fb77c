package repository

import (
	"context"
	"log"
	"sync"

	"github.com/jackc/pgx/v5"
)

// notifyChannel is the postgres NOTIFY channel shared by every device
// writing to the clients collection.
const notifyChannel = "cockpit_clients_changed"

// RemoteNotifier delivers change ticks for the remote clients collection.
// Writes from this process fan out to local subscribers directly and issue a
// NOTIFY so other devices see them; a LISTEN connection picks up writes made
// elsewhere. Ticks are coalesced, subscribers reload the collection
// themselves.
type RemoteNotifier struct {
	dsn string

	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int

	execMu   sync.Mutex
	execConn *pgx.Conn

	cancel context.CancelFunc
}

func NewRemoteNotifier(dsn string) *RemoteNotifier {
	return &RemoteNotifier{
		dsn:  dsn,
		subs: make(map[int]chan struct{}),
	}
}

// Start opens the LISTEN and NOTIFY connections and begins delivering ticks.
// A failure here means the remote session could not be established; the
// caller degrades to local-only mode and does not retry.
func (n *RemoteNotifier) Start(ctx context.Context) error {
	listenConn, err := pgx.Connect(ctx, n.dsn)
	if err != nil {
		return err
	}
	if _, err := listenConn.Exec(ctx, "listen "+notifyChannel); err != nil {
		listenConn.Close(ctx)
		return err
	}

	execConn, err := pgx.Connect(ctx, n.dsn)
	if err != nil {
		listenConn.Close(ctx)
		return err
	}

	n.execMu.Lock()
	n.execConn = execConn
	n.execMu.Unlock()

	loopCtx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	go n.listenLoop(loopCtx, listenConn)

	return nil
}

func (n *RemoteNotifier) listenLoop(ctx context.Context, conn *pgx.Conn) {
	defer conn.Close(context.Background())

	for {
		_, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Listener died mid-session. Per the degradation policy there is
			// no reconnect; remaining snapshots come from this process only.
			log.Printf("remote listener stopped: %v", err)
			return
		}
		n.fanOut()
	}
}

// Notify announces a change made by this process. Local subscribers get the
// tick even when the NOTIFY round-trip fails.
func (n *RemoteNotifier) Notify(ctx context.Context) {
	n.fanOut()

	n.execMu.Lock()
	conn := n.execConn
	n.execMu.Unlock()
	if conn == nil {
		return
	}

	n.execMu.Lock()
	_, err := conn.Exec(ctx, "notify "+notifyChannel)
	n.execMu.Unlock()
	if err != nil {
		log.Printf("remote notify failed: %v", err)
	}
}

// Subscribe returns a coalesced tick channel and a cancel func. The channel
// is closed on cancel.
func (n *RemoteNotifier) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

func (n *RemoteNotifier) fanOut() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
			// tick already pending, subscriber reloads once anyway
		}
	}
}

// Close tears down both connections and all subscriptions.
func (n *RemoteNotifier) Close(ctx context.Context) {
	if n.cancel != nil {
		n.cancel()
	}

	n.execMu.Lock()
	if n.execConn != nil {
		n.execConn.Close(ctx)
		n.execConn = nil
	}
	n.execMu.Unlock()

	n.mu.Lock()
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
	n.mu.Unlock()
}
