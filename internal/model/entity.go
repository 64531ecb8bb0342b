package model

// Entity describes one table exposed by the gateway. The table name doubles
// as the URL path prefix.
//
// Fields:
//
//	Name  – table name and path prefix (e.g. "tourpackages").
//	Key   – primary key column used for lookups by id.
//	Label – human name used in not-found messages.
type Entity struct {
	Name  string
	Key   string
	Label string
}

var (
	Agents       = Entity{Name: "agents", Key: "AgentID", Label: "Agent"}
	Bookings     = Entity{Name: "bookings", Key: "BookingID", Label: "Booking"}
	Customers    = Entity{Name: "customers", Key: "CustomerID", Label: "Customer"}
	Destinations = Entity{Name: "destinations", Key: "DestinationID", Label: "Destination"}
	TourPackages = Entity{Name: "tourpackages", Key: "PackageID", Label: "Tour package"}
	Payments     = Entity{Name: "payments", Key: "PaymentID", Label: "Payment"}
	Reviews      = Entity{Name: "reviews", Key: "ReviewID", Label: "Review"}
	Transport    = Entity{Name: "transport", Key: "TransportID", Label: "Transport"}
)

// DefaultListing is the entity listed when a GET matches no other route.
var DefaultListing = Agents

var all = []Entity{Agents, Bookings, Customers, Destinations, TourPackages, Payments, Reviews, Transport}

// All returns the eight entities in a stable order.
func All() []Entity {
	out := make([]Entity, len(all))
	copy(out, all)
	return out
}

// Lookup finds an entity by its path prefix.
func Lookup(name string) (Entity, bool) {
	for _, e := range all {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// Readable lists the entities that can be fetched by primary key.
func Readable() []Entity {
	return []Entity{Agents, Bookings, Customers, Destinations, TourPackages}
}

// Deletable lists the entities that can be deleted by primary key.
func Deletable() []Entity { return All() }
