package protocol_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rickfelix/ehg-leo/internal/protocol"
)

type fakeSource struct {
	proto     protocol.Protocol
	err       error
	gotLimit  int
	agentsErr error
}

func (f *fakeSource) CurrentProtocol(context.Context) (protocol.Protocol, error) {
	return f.proto, f.err
}

func (f *fakeSource) Agents(context.Context) ([]protocol.Agent, error) {
	return []protocol.Agent{{Code: "LEAD"}}, f.agentsErr
}

func (f *fakeSource) SubAgents(context.Context) ([]protocol.SubAgent, error) {
	return []protocol.SubAgent{}, nil
}

func (f *fakeSource) HotPatterns(context.Context) ([]protocol.HotPattern, error) {
	return []protocol.HotPattern{}, nil
}

func (f *fakeSource) RecentRetrospectives(_ context.Context, limit int) ([]protocol.Retrospective, error) {
	f.gotLimit = limit
	return []protocol.Retrospective{}, nil
}

func (f *fakeSource) VisionGapInsights(context.Context) ([]protocol.VisionGap, error) {
	return []protocol.VisionGap{{PatternID: "VGAP-001"}}, nil
}

func TestCollect(t *testing.T) {
	src := &fakeSource{proto: protocol.Protocol{Version: "4.3.1"}}
	at := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	d, err := protocol.Collect(context.Background(), src, src, at)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if d.Protocol.Version != "4.3.1" || !d.GeneratedAt.Equal(at) {
		t.Errorf("bundle = %+v", d)
	}
	if len(d.Agents) != 1 || len(d.VisionGapInsights) != 1 {
		t.Errorf("live data not copied: %+v", d)
	}
	if src.gotLimit != protocol.DefaultRetrospectiveLimit {
		t.Errorf("retrospective limit = %d, want %d", src.gotLimit, protocol.DefaultRetrospectiveLimit)
	}
}

func TestCollect_Errors(t *testing.T) {
	boom := errors.New("boom")

	if _, err := protocol.Collect(context.Background(), &fakeSource{err: boom}, &fakeSource{}, time.Time{}); !errors.Is(err, boom) {
		t.Errorf("protocol error = %v, want boom", err)
	}
	if _, err := protocol.Collect(context.Background(), &fakeSource{}, &fakeSource{agentsErr: boom}, time.Time{}); !errors.Is(err, boom) {
		t.Errorf("live data error = %v, want boom", err)
	}
}
