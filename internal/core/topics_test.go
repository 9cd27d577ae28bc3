package core

import "testing"

func TestWhisperReachesEveryDeviceOfIdentity(t *testing.T) {
	topics := NewTopics()
	phone, laptop := &captureSink{}, &captureSink{}
	topics.Subscribe("bob", "c1", phone)
	topics.Subscribe("bob", "c2", laptop)

	if n := topics.Publish("bob", Frame(`{"type":"whisper-delivered"}`)); n != 2 {
		t.Fatalf("expected delivery to both devices, got %d", n)
	}
	if len(phone.frames) != 1 || len(laptop.frames) != 1 {
		t.Error("each subscribed connection should have received the frame once")
	}
}

func TestWhisperDoesNotCrossIdentities(t *testing.T) {
	topics := NewTopics()
	bob, eve := &captureSink{}, &captureSink{}
	topics.Subscribe("bob", "c1", bob)
	topics.Subscribe("eve", "c2", eve)

	topics.Publish("bob", Frame(`{}`))

	if len(eve.frames) != 0 {
		t.Error("a whisper to bob must never reach a connection registered under another identity")
	}
}

func TestPublishWithoutSubscribersDeliversNothing(t *testing.T) {
	topics := NewTopics()
	if n := topics.Publish("nobody", Frame(`{}`)); n != 0 {
		t.Errorf("expected zero deliveries, got %d", n)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	topics := NewTopics()
	sink := &captureSink{}
	topics.Subscribe("bob", "c1", sink)
	topics.Unsubscribe("bob", "c1")

	if n := topics.Publish("bob", Frame(`{}`)); n != 0 {
		t.Errorf("unsubscribed connection still receives whispers, delivered=%d", n)
	}

	// Unsubscribing an unknown pair must be harmless.
	topics.Unsubscribe("bob", "c1")
	topics.Unsubscribe("ghost", "c9")
}

func TestFailingSinkDoesNotCountAsDelivered(t *testing.T) {
	topics := NewTopics()
	dead, live := &captureSink{fail: true}, &captureSink{}
	topics.Subscribe("bob", "c1", dead)
	topics.Subscribe("bob", "c2", live)

	if n := topics.Publish("bob", Frame(`{}`)); n != 1 {
		t.Errorf("expected exactly the writable device to count, got %d", n)
	}
}
