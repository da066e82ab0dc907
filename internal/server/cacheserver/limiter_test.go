package cacheserver

import "testing"

func TestIPLimiters_Disabled(t *testing.T) {
	var l *ipLimiters = newIPLimiters(0)
	if l != nil {
		t.Fatal("newIPLimiters(0) should return nil")
	}
	for i := 0; i < 100; i++ {
		if !l.allow("10.0.0.1") {
			t.Fatal("nil limiter must allow everything")
		}
	}
	if l.prune() != 0 || l.len() != 0 {
		t.Error("nil limiter should report nothing")
	}
}

func TestIPLimiters_PerIP(t *testing.T) {
	l := newIPLimiters(2)

	if !l.allow("10.0.0.1") || !l.allow("10.0.0.1") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.allow("10.0.0.1") {
		t.Error("third command within a second should be limited")
	}
	if !l.allow("10.0.0.2") {
		t.Error("other IPs have their own bucket")
	}
	if l.len() != 2 {
		t.Errorf("len() = %d, want 2", l.len())
	}
}

func TestIPLimiters_PruneKeepsDrained(t *testing.T) {
	l := newIPLimiters(5)
	l.getOrCreate("10.0.0.1")
	l.allow("10.0.0.2")

	if n := l.prune(); n != 1 {
		t.Errorf("prune() = %d, want 1 (only the full bucket)", n)
	}
	if l.len() != 1 {
		t.Errorf("len() = %d, want 1", l.len())
	}
}
