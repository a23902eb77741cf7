package domain

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// ProgressStages is the fixed customer-facing order progression. A cancelled
// order is not on it.
var ProgressStages = []OrderStatus{
	StatusPending, StatusConfirmed, StatusPreparing,
	StatusReady, StatusPickedUp, StatusDelivered,
}

// StageIndex returns the position of status on ProgressStages, or -1.
func StageIndex(status OrderStatus) int {
	for i, s := range ProgressStages {
		if s == status {
			return i
		}
	}
	return -1
}

// CanCancel reports whether the customer may still cancel the order. The
// server enforces the same rule; this only drives the affordance.
func CanCancel(status OrderStatus) bool {
	return status == StatusPending || status == StatusConfirmed
}

// Transition is the single forward action an actor may take from a status.
type Transition struct {
	Next  OrderStatus
	Label string
}

// OwnerTransitions mirrors the restaurant action table: exactly one forward
// transition per actionable status.
var OwnerTransitions = map[OrderStatus]Transition{
	StatusPending:   {Next: StatusConfirmed, Label: "Accept Order"},
	StatusConfirmed: {Next: StatusPreparing, Label: "Start Preparing"},
	StatusPreparing: {Next: StatusReady, Label: "Mark Ready"},
}

// DriverTransitions is the driver's action table.
var DriverTransitions = map[OrderStatus]Transition{
	StatusReady:    {Next: StatusPickedUp, Label: "Pick Up"},
	StatusPickedUp: {Next: StatusDelivered, Label: "Mark Delivered"},
}

// Tab groups orders on the restaurant board by status set.
type Tab struct {
	Value    string
	Label    string
	Statuses []OrderStatus
}

var BoardTabs = []Tab{
	{Value: "new", Label: "New", Statuses: []OrderStatus{StatusPending}},
	{Value: "active", Label: "Active", Statuses: []OrderStatus{StatusConfirmed, StatusPreparing, StatusReady}},
	{Value: "completed", Label: "Completed", Statuses: []OrderStatus{StatusDelivered}},
	{Value: "cancelled", Label: "Cancelled", Statuses: []OrderStatus{StatusCancelled}},
}

func (t Tab) Contains(status OrderStatus) bool {
	for _, s := range t.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
