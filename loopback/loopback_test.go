package loopback

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/XC-/relay"
)

var (
	hostAddr = relay.MustParseBDAddr("11:22:33:44:55:66")
	srvAddr  = relay.MustParseBDAddr("aa:bb:cc:dd:ee:01")
)

type recordedWrite struct {
	off  int
	data []byte
}

// recorder is a write handler that keeps every fragment it is handed.
type recorder struct {
	mu     sync.Mutex
	writes []recordedWrite
	status byte
}

func (r *recorder) ServeWrite(req relay.WriteRequest, data []byte) byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, recordedWrite{req.Offset, append([]byte(nil), data...)})
	return r.status
}

func (r *recorder) all() []recordedWrite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedWrite(nil), r.writes...)
}

func newRelayServer(h relay.WriteHandler, encrypted bool) *Server {
	svc := relay.NewService(relay.ServiceUUID)
	c := svc.AddCharacteristic(relay.OutputStateUUID)
	c.HandleWrite(h)
	if encrypted {
		c.RequireEncryption()
	}
	return NewServer(srvAddr, svc)
}

// collect runs p on c and returns every attribute it reports, up to the
// nil that ends the procedure.
func collect(t *testing.T, c *Conn, p relay.DiscoverParams) []relay.Attribute {
	var got []relay.Attribute
	done := make(chan struct{})
	p.Func = func(_ relay.Conn, a *relay.Attribute, _ *relay.DiscoverParams) relay.IterAction {
		if a == nil {
			close(done)
			return relay.IterStop
		}
		got = append(got, *a)
		return relay.IterContinue
	}
	if err := c.Discover(&p); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("discovery did not complete")
	}
	return got
}

func TestHostHandlers(t *testing.T) {
	var up, down []relay.Conn
	var reasons []uint8
	var errs []error
	h := NewHost(hostAddr,
		Connected(func(c relay.Conn, err error) {
			up = append(up, c)
			errs = append(errs, err)
		}),
		Disconnected(func(c relay.Conn, reason uint8) {
			down = append(down, c)
			reasons = append(reasons, reason)
		}),
	)
	s := newRelayServer(&recorder{}, false)

	c, err := h.Connect(s)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if len(up) != 1 || up[0] != c || errs[0] != nil {
		t.Fatalf("Connected handler: got %v %v", up, errs)
	}
	if h.Conns() != 1 {
		t.Errorf("Conns: got %d want 1", h.Conns())
	}
	if !c.LocalAddr().Equal(hostAddr) || !c.RemoteAddr().Equal(srvAddr) {
		t.Errorf("addresses: got %s -> %s", c.LocalAddr(), c.RemoteAddr())
	}

	if err := h.Disconnect(c, ReasonRemoteUserTerminated); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if len(down) != 1 || down[0] != c || reasons[0] != ReasonRemoteUserTerminated {
		t.Errorf("Disconnected handler: got %v %v", down, reasons)
	}
	if err := h.Disconnect(c, ReasonRemoteUserTerminated); err == nil {
		t.Error("second Disconnect should fail")
	}
	if err := c.WriteWithoutResponse(9, nil); !errors.Is(err, relay.ErrClosed) {
		t.Errorf("write after disconnect: got %v want %v", err, relay.ErrClosed)
	}
}

func TestConnectFailure(t *testing.T) {
	boom := errors.New("page timeout")
	var got error
	h := NewHost(hostAddr, Connected(func(c relay.Conn, err error) { got = err }))

	c, err := h.Connect(newRelayServer(&recorder{}, false), FailWith(boom))
	if err != boom || got != boom {
		t.Fatalf("Connect: got %v, handler %v, want %v", err, got, boom)
	}
	if h.Conns() != 0 {
		t.Errorf("failed link registered")
	}
	if err := c.Discover(&relay.DiscoverParams{}); !errors.Is(err, relay.ErrClosed) {
		t.Errorf("Discover on failed link: got %v", err)
	}
}

func TestConnInfo(t *testing.T) {
	h := NewHost(hostAddr)
	s := newRelayServer(&recorder{}, false)

	c, _ := h.Connect(s)
	want := relay.ConnInfo{Role: relay.RoleCentral, Security: relay.SecurityEncrypted, Interval: DefaultInterval, MTU: DefaultMTU}
	if c.Info() != want {
		t.Errorf("default info: got %+v want %+v", c.Info(), want)
	}

	c, _ = h.Connect(s, AsPeripheral(), Security(relay.SecurityNone), MTU(23), Interval(30*time.Millisecond))
	want = relay.ConnInfo{Role: relay.RolePeripheral, Security: relay.SecurityNone, Interval: 30 * time.Millisecond, MTU: 23}
	if c.Info() != want {
		t.Errorf("info: got %+v want %+v", c.Info(), want)
	}
}

func TestDiscoverServices(t *testing.T) {
	c, _ := NewHost(hostAddr).Connect(newRelayServer(&recorder{}, false))

	all := collect(t, c, relay.DiscoverParams{Type: relay.DiscoverPrimary, StartHandle: 1, EndHandle: 0xffff})
	if len(all) != 3 {
		t.Fatalf("all services: got %d want 3", len(all))
	}

	got := collect(t, c, relay.DiscoverParams{UUID: relay.ServiceUUID, Type: relay.DiscoverPrimary, StartHandle: 1, EndHandle: 0xffff})
	want := []relay.Attribute{{Handle: 7, EndHandle: 9, UUID: relay.ServiceUUID}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("relay service: got %+v want %+v", got, want)
	}

	chars := collect(t, c, relay.DiscoverParams{
		UUID:        relay.OutputStateUUID,
		Type:        relay.DiscoverCharacteristic,
		StartHandle: got[0].Handle + 1,
		EndHandle:   got[0].EndHandle,
	})
	if len(chars) != 1 || chars[0].Handle != 8 || chars[0].ValueHandle != 9 {
		t.Errorf("output-state characteristic: got %+v", chars)
	}

	// The characteristic lies outside the GAP service.
	none := collect(t, c, relay.DiscoverParams{UUID: relay.OutputStateUUID, Type: relay.DiscoverCharacteristic, StartHandle: 2, EndHandle: 5})
	if len(none) != 0 {
		t.Errorf("out of range: got %+v", none)
	}
}

func TestDiscoverStop(t *testing.T) {
	c, _ := NewHost(hostAddr).Connect(newRelayServer(&recorder{}, false))

	calls := make(chan *relay.Attribute, 8)
	p := &relay.DiscoverParams{
		Type:        relay.DiscoverPrimary,
		StartHandle: 1,
		EndHandle:   0xffff,
		Func: func(_ relay.Conn, a *relay.Attribute, _ *relay.DiscoverParams) relay.IterAction {
			calls <- a
			return relay.IterStop
		},
	}
	if err := c.Discover(p); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	select {
	case a := <-calls:
		if a == nil {
			t.Fatal("first result should be an attribute")
		}
	case <-time.After(time.Second):
		t.Fatal("no discovery result")
	}
	select {
	case a := <-calls:
		t.Errorf("result after IterStop: %+v", a)
	case <-time.After(50 * time.Millisecond):
	}

	if err := c.Discover(&relay.DiscoverParams{}); err == nil {
		t.Error("Discover without callback should fail")
	}
}

func TestWriteFragments(t *testing.T) {
	rec := &recorder{}
	c, _ := NewHost(hostAddr).Connect(newRelayServer(rec, false), MTU(23))

	data := make([]byte, relay.EventSize)
	for i := range data {
		data[i] = byte(i)
	}
	if err := c.WriteWithoutResponse(9, data); err != nil {
		t.Fatalf("WriteWithoutResponse: %v", err)
	}

	got := rec.all()
	if len(got) != 2 {
		t.Fatalf("fragments: got %d want 2", len(got))
	}
	if got[0].off != 0 || len(got[0].data) != 20 {
		t.Errorf("first fragment: off %d len %d", got[0].off, len(got[0].data))
	}
	if got[1].off != 20 || len(got[1].data) != relay.EventSize-20 || got[1].data[0] != 20 {
		t.Errorf("second fragment: off %d len %d", got[1].off, len(got[1].data))
	}
	if n := c.srv.Writes(); n != 2 {
		t.Errorf("Writes: got %d want 2", n)
	}
}

func TestWriteErrors(t *testing.T) {
	cases := []struct {
		name      string
		encrypted bool
		status    byte
		opts      []ConnOption
		handle    uint16
		want      byte
	}{
		{name: "gap value", handle: 3, want: relay.StatusWriteNotPermitted},
		{name: "declaration", handle: 8, want: relay.StatusInvalidHandle},
		{name: "past end", handle: 100, want: relay.StatusInvalidHandle},
		{name: "unencrypted", encrypted: true, opts: []ConnOption{Security(relay.SecurityNone)}, handle: 9, want: relay.StatusInsufficientEncryption},
		{name: "handler status", status: relay.StatusInvalidOffset, handle: 9, want: relay.StatusInvalidOffset},
	}

	for _, tt := range cases {
		rec := &recorder{status: tt.status}
		c, _ := NewHost(hostAddr).Connect(newRelayServer(rec, tt.encrypted), tt.opts...)
		err := c.WriteWithoutResponse(tt.handle, []byte{1, 2, 3})
		var se relay.StatusError
		if !errors.As(err, &se) || byte(se) != tt.want {
			t.Errorf("%s: got %v want status 0x%02x", tt.name, err, tt.want)
		}
	}
}

func TestWriteLoss(t *testing.T) {
	rec := &recorder{}
	n := 0
	drop := func() bool { n++; return n%2 == 1 }
	c, _ := NewHost(hostAddr).Connect(newRelayServer(rec, false), Loss(drop))

	for i := 0; i < 4; i++ {
		if err := c.WriteWithoutResponse(9, []byte{byte(i)}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	got := rec.all()
	if len(got) != 2 || got[0].data[0] != 1 || got[1].data[0] != 3 {
		t.Errorf("surviving writes: got %+v", got)
	}
}
