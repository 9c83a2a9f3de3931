package rim

import "testing"

// Universal property 2: pickup is pure and idempotent. Two consecutive
// calls with no intervening write must return equal-shaped, independent
// snapshots, and mutating one returned route must not affect the other
// or the RIM's own tables (spec §9, "snapshots by clone").
func TestPickupTopicRouteData_ConsecutiveCallsAreIndependentSnapshots(t *testing.T) {
	r := New(Config{})
	if _, err := r.RegisterBroker("DefaultCluster", "10.0.0.1:10911", "broker-a", 0,
		"10.0.0.1:10912", "", false, twoTopicWrapper("T", PermRead|PermWrite, 1), nil); err != nil {
		t.Fatalf("RegisterBroker failed: %v", err)
	}

	first, err := r.PickupTopicRouteData("T")
	if err != nil {
		t.Fatalf("first PickupTopicRouteData failed: %v", err)
	}
	second, err := r.PickupTopicRouteData("T")
	if err != nil {
		t.Fatalf("second PickupTopicRouteData failed: %v", err)
	}

	if len(first.BrokerDatas) != len(second.BrokerDatas) || len(first.QueueDatas) != len(second.QueueDatas) {
		t.Fatalf("expected consecutive pickups to agree in shape, got %+v and %+v", first, second)
	}

	first.BrokerDatas[0].BrokerAddrs[99] = "mutated"
	if _, stillThere := second.BrokerDatas[0].BrokerAddrs[99]; stillThere {
		t.Error("expected mutating one snapshot's BrokerAddrs to leave the other untouched")
	}

	third, err := r.PickupTopicRouteData("T")
	if err != nil {
		t.Fatalf("third PickupTopicRouteData failed: %v", err)
	}
	if _, leaked := third.BrokerDatas[0].BrokerAddrs[99]; leaked {
		t.Error("expected mutating a returned snapshot to leave the RIM's own tables untouched")
	}
}

// Pickup of an unknown topic returns (nil, nil), never an error.
func TestPickupTopicRouteData_UnknownTopic(t *testing.T) {
	r := New(Config{})

	route, err := r.PickupTopicRouteData("does-not-exist")
	if err != nil {
		t.Fatalf("expected no error for an unknown topic, got %v", err)
	}
	if route != nil {
		t.Errorf("expected a nil route for an unknown topic, got %+v", route)
	}
}
