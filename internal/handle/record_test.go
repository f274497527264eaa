package handle

import "testing"

func TestNewSubscriptionRecordInvariants(t *testing.T) {
	sub := &fakeSubscription{}
	cb := SubscriptionCallback(func(interface{}) {})
	r := newSubscriptionRecord(sub, new(int), cb, Always)

	if r.Kind != KindSubscription {
		t.Fatalf("kind = %v, want KindSubscription", r.Kind)
	}
	if r.Ref != interface{}(sub) {
		t.Fatal("Ref must equal the subscription passed in")
	}
	if _, ok := r.Callback.(SubscriptionCallback); !ok {
		t.Fatal("callback must be stored as the kind-specific variant")
	}
	if r.Index != IndexUnassigned {
		t.Fatalf("index = %d, want sentinel %d", r.Index, IndexUnassigned)
	}
	if !r.Initialized {
		t.Fatal("newly constructed record must be Initialized")
	}
}

func TestRecordResetZeroesSlot(t *testing.T) {
	sub := &fakeSubscription{}
	r := newSubscriptionRecord(sub, new(int), func(interface{}) {}, OnNewData)
	r.DataAvailable = true
	r.reset()

	if r.Initialized {
		t.Fatal("reset record must not be Initialized")
	}
	if r.Ref != nil {
		t.Fatal("reset record must clear Ref")
	}
	if r.Index != IndexUnassigned {
		t.Fatalf("reset record index = %d, want sentinel", r.Index)
	}
}
