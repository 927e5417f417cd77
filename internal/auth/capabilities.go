package auth

// CanManageOrders covers listing every order and moving any order through the workflow.
func CanManageOrders(a Actor) bool { return a.Is(RoleAdmin, RoleManager) }

func CanDeleteOrders(a Actor) bool { return a.Is(RoleAdmin) }

func CanAssignDelivery(a Actor) bool { return a.Is(RoleManager, RoleAdmin) }

func CanManageProducts(a Actor) bool { return a.Is(RoleAdmin) }

func CanManageUsers(a Actor) bool { return a.Is(RoleAdmin) }

func CanListDeliveryMen(a Actor) bool { return a.Is(RoleManager, RoleAdmin) }

// CanViewOrder reports whether a may read an order owned by ownerID and
// currently assigned to deliveryManID (nil when unassigned).
func CanViewOrder(a Actor, ownerID string, deliveryManID *string) bool {
	switch {
	case a.ID != "" && a.ID == ownerID:
		return true
	case CanManageOrders(a):
		return true
	case a.Role == RoleDeliveryMan:
		return deliveryManID != nil && *deliveryManID == a.ID
	}
	return false
}

// CanUpdateStatus reports whether a may move an order to target. Delivery men
// may only report progress (in_transit, delivered) on orders assigned to them.
func CanUpdateStatus(a Actor, deliveryManID *string, target string) bool {
	if CanManageOrders(a) {
		return true
	}
	if a.Role != RoleDeliveryMan || deliveryManID == nil || *deliveryManID != a.ID {
		return false
	}
	return target == "in_transit" || target == "delivered"
}
