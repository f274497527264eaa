package simmw

import "testing"

func TestRequestResponseRoundTrip(t *testing.T) {
	ch, err := NewRequestResponseChannel(4)
	if err != nil {
		t.Fatalf("NewRequestResponseChannel: %v", err)
	}
	client := NewClient(ch)
	service := NewService(ch)

	seq, err := client.SendRequest("ping")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	var req string
	ok, gotSeq, err := service.TakeRequest(&req)
	if err != nil {
		t.Fatalf("TakeRequest: %v", err)
	}
	if !ok || gotSeq != seq || req != "ping" {
		t.Fatalf("got (%v, %d, %q), want (true, %d, ping)", ok, gotSeq, req, seq)
	}

	if err := service.SendResponse(gotSeq, "pong"); err != nil {
		t.Fatalf("SendResponse: %v", err)
	}

	var resp string
	ok, respSeq, err := client.TakeResponse(&resp)
	if err != nil {
		t.Fatalf("TakeResponse: %v", err)
	}
	if !ok || respSeq != seq || resp != "pong" {
		t.Fatalf("got (%v, %d, %q), want (true, %d, pong)", ok, respSeq, resp, seq)
	}
}

func TestRequestResponseSequenceNumbersIncrease(t *testing.T) {
	ch, err := NewRequestResponseChannel(4)
	if err != nil {
		t.Fatalf("NewRequestResponseChannel: %v", err)
	}
	client := NewClient(ch)
	seq1, _ := client.SendRequest("a")
	seq2, _ := client.SendRequest("b")
	if seq2 <= seq1 {
		t.Fatalf("expected increasing sequence numbers, got %d then %d", seq1, seq2)
	}
}

func TestTakeResponseEmptyReturnsFalse(t *testing.T) {
	ch, err := NewRequestResponseChannel(1)
	if err != nil {
		t.Fatalf("NewRequestResponseChannel: %v", err)
	}
	client := NewClient(ch)
	var resp string
	ok, _, err := client.TakeResponse(&resp)
	if err != nil || ok {
		t.Fatalf("got (%v, %v), want (false, nil)", ok, err)
	}
}
